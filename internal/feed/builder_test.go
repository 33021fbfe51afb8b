package feed_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"openfeed/internal/core"
	"openfeed/internal/feed"
)

type fakePostRepo struct {
	core.PostRepository

	posts []core.PostModel
	since time.Time
}

func (f *fakePostRepo) ListAll(context.Context) ([]core.PostModel, error) {
	return f.posts, nil
}

func (f *fakePostRepo) ListByAuthor(_ context.Context, userID string) ([]core.PostModel, error) {
	var out []core.PostModel
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) ListCreatedSince(_ context.Context, since time.Time) ([]core.PostModel, error) {
	f.since = since
	return f.posts, nil
}

type fakeLikeRepo struct {
	core.LikeRepository

	likes []core.LikeModel
}

func (f *fakeLikeRepo) ListByPosts(context.Context, []string) ([]core.LikeModel, error) {
	return f.likes, nil
}

type fakeCommentRepo struct {
	core.CommentRepository

	counts map[string]int64
}

func (f *fakeCommentRepo) CountTopLevel(context.Context, []string) (map[string]int64, error) {
	return f.counts, nil
}

type fakeProfileRepo struct {
	core.ProfileRepository

	profiles map[string]core.ProfileModel
}

func (f *fakeProfileRepo) GetMany(context.Context, []string) (map[string]core.ProfileModel, error) {
	return f.profiles, nil
}

func approved(id, author string) core.PostModel {
	return core.PostModel{ID: id, UserID: author, Status: core.StatusApproved}
}

func newBuilder(posts []core.PostModel, likes []core.LikeModel, counts map[string]int64) *feed.Builder {
	return &feed.Builder{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Posts:    &fakePostRepo{posts: posts},
		Likes:    &fakeLikeRepo{likes: likes},
		Comments: &fakeCommentRepo{counts: counts},
		Profiles: &fakeProfileRepo{profiles: map[string]core.ProfileModel{
			"alice": {ID: "alice", FullName: "Alice Example"},
		}},
	}
}

func TestBuilder_Feed(t *testing.T) {
	t.Parallel()

	rows := []core.PostModel{
		approved("1", "alice"),
		{ID: "2", UserID: "alice", Status: core.StatusRejected},
		approved("3", "bob"),
	}

	builder := newBuilder(rows, []core.LikeModel{
		{PostID: "1", UserID: "bob", ReactionType: core.ReactionLove},
		{PostID: "1", UserID: "carol", ReactionType: core.ReactionLove},
		{PostID: "3", UserID: "alice", ReactionType: core.ReactionHaha},
	}, map[string]int64{"1": 4})

	t.Run("rejected posts are invisible, even to their author", func(t *testing.T) {
		t.Parallel()

		views, err := builder.Feed(t.Context(), "alice")

		require.NoError(t, err)
		require.Len(t, views, 2)
		require.Equal(t, "1", views[0].ID)
		require.Equal(t, "3", views[1].ID)
	})

	t.Run("views carry reaction counts, comment counts and authors", func(t *testing.T) {
		t.Parallel()

		views, err := builder.Feed(t.Context(), "bob")

		require.NoError(t, err)
		require.Equal(t, 2, views[0].ReactionsCount[core.ReactionLove])
		require.Equal(t, 2, views[0].LikesCount)
		require.Equal(t, int64(4), views[0].CommentsCount)
		require.NotNil(t, views[0].Author)
		require.Equal(t, "Alice Example", views[0].Author.FullName)

		require.NotNil(t, views[0].UserReaction)
		require.Equal(t, core.ReactionLove, *views[0].UserReaction)
		require.Nil(t, views[1].UserReaction)
	})
}

func TestBuilder_Popular(t *testing.T) {
	t.Parallel()

	builder := newBuilder(
		[]core.PostModel{approved("quiet", "alice"), approved("loud", "bob")},
		[]core.LikeModel{
			{PostID: "loud", UserID: "u1", ReactionType: core.ReactionLike},
			{PostID: "loud", UserID: "u2", ReactionType: core.ReactionWow},
			{PostID: "quiet", UserID: "u3", ReactionType: core.ReactionLike},
		},
		nil,
	)

	views, err := builder.Popular(t.Context(), "")

	require.NoError(t, err)
	require.Equal(t, "loud", views[0].ID)
	require.Equal(t, "quiet", views[1].ID)
}

func TestBuilder_Trending(t *testing.T) {
	t.Parallel()

	t.Run("comments outweigh reactions two to one", func(t *testing.T) {
		t.Parallel()

		// "discussed": 1 like + 2 comments = 5; "reacted": 4 likes = 4.
		builder := newBuilder(
			[]core.PostModel{approved("reacted", "alice"), approved("discussed", "bob")},
			[]core.LikeModel{
				{PostID: "reacted", UserID: "u1", ReactionType: core.ReactionLike},
				{PostID: "reacted", UserID: "u2", ReactionType: core.ReactionLike},
				{PostID: "reacted", UserID: "u3", ReactionType: core.ReactionLike},
				{PostID: "reacted", UserID: "u4", ReactionType: core.ReactionLike},
				{PostID: "discussed", UserID: "u5", ReactionType: core.ReactionLike},
			},
			map[string]int64{"discussed": 2},
		)

		views, err := builder.Trending(t.Context(), "", feed.WindowWeek)

		require.NoError(t, err)
		require.Equal(t, "discussed", views[0].ID)
		require.Equal(t, "reacted", views[1].ID)
	})

	t.Run("unknown window is invalid", func(t *testing.T) {
		t.Parallel()

		builder := newBuilder(nil, nil, nil)

		_, err := builder.Trending(t.Context(), "", "fortnight")

		require.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("empty window defaults to today", func(t *testing.T) {
		t.Parallel()

		repo := &fakePostRepo{}
		builder := newBuilder(nil, nil, nil)
		builder.Posts = repo

		_, err := builder.Trending(t.Context(), "", "")

		require.NoError(t, err)
		require.False(t, repo.since.IsZero())
		require.WithinDuration(t, time.Now().UTC(), repo.since, 24*time.Hour)
	})
}

func TestBuilder_OwnerViews(t *testing.T) {
	t.Parallel()

	rows := []core.PostModel{
		approved("a1", "alice"),
		{ID: "a2", UserID: "alice", Status: core.StatusRejected},
		{ID: "a3", UserID: "alice", Status: core.StatusPending},
		approved("b1", "bob"),
	}

	builder := newBuilder(rows, nil, nil)

	t.Run("recent shows own approved and pending", func(t *testing.T) {
		t.Parallel()

		views, err := builder.Recent(t.Context(), "alice")

		require.NoError(t, err)
		require.Len(t, views, 2)
		require.Equal(t, "a1", views[0].ID)
		require.Equal(t, "a3", views[1].ID)
	})

	t.Run("rejected view shows exactly own rejected", func(t *testing.T) {
		t.Parallel()

		views, err := builder.Rejected(t.Context(), "alice")

		require.NoError(t, err)
		require.Len(t, views, 1)
		require.Equal(t, "a2", views[0].ID)
		require.Equal(t, core.StatusRejected, views[0].Status)
	})

	t.Run("another user's page hides everything but approved", func(t *testing.T) {
		t.Parallel()

		views, err := builder.ByAuthor(t.Context(), "bob", "alice")

		require.NoError(t, err)
		require.Len(t, views, 1)
		require.Equal(t, "a1", views[0].ID)
	})

	t.Run("owner views require authentication", func(t *testing.T) {
		t.Parallel()

		_, err := builder.Recent(t.Context(), "")
		require.ErrorIs(t, err, core.ErrUnauthorized)

		_, err = builder.Rejected(t.Context(), "")
		require.ErrorIs(t, err, core.ErrUnauthorized)
	})
}
