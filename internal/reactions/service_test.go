package reactions_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"openfeed/internal/core"
	"openfeed/internal/reactions"
)

type fakeLikeRepo struct {
	core.LikeRepository

	current *core.LikeModel

	inserted *core.LikeModel
	updated  *core.ReactionType
	deleted  bool
}

func (f *fakeLikeRepo) Find(context.Context, string, string) (*core.LikeModel, error) {
	return f.current, nil
}

func (f *fakeLikeRepo) Insert(_ context.Context, like *core.LikeModel) error {
	f.inserted = like
	return nil
}

func (f *fakeLikeRepo) UpdateType(_ context.Context, _, _ string, t core.ReactionType) error {
	f.updated = &t
	return nil
}

func (f *fakeLikeRepo) Delete(context.Context, string, string) error {
	f.deleted = true
	return nil
}

func (f *fakeLikeRepo) ListByPosts(context.Context, []string) ([]core.LikeModel, error) {
	if f.current == nil {
		return nil, nil
	}
	return []core.LikeModel{*f.current}, nil
}

type fakePostRepo struct {
	core.PostRepository

	exists bool
}

func (f *fakePostRepo) Exists(context.Context, string) (bool, error) {
	return f.exists, nil
}

type fakeCommentRepo struct {
	core.CommentRepository

	getErr error
}

func (f *fakeCommentRepo) Get(context.Context, string) (core.CommentModel, error) {
	return core.CommentModel{ID: "comment-1"}, f.getErr
}

type fakeCommentLikeRepo struct {
	core.CommentLikeRepository

	liked    bool
	inserted bool
	deleted  bool
}

func (f *fakeCommentLikeRepo) Exists(context.Context, string, string) (bool, error) {
	return f.liked, nil
}

func (f *fakeCommentLikeRepo) Insert(context.Context, *core.CommentLikeModel) error {
	f.inserted = true
	return nil
}

func (f *fakeCommentLikeRepo) Delete(context.Context, string, string) error {
	f.deleted = true
	return nil
}

type changeRecorder struct {
	events []core.ChangeEvent
}

func (c *changeRecorder) Publish(_ context.Context, event core.ChangeEvent) error {
	c.events = append(c.events, event)
	return nil
}

func newService(likes *fakeLikeRepo, commentLikes *fakeCommentLikeRepo) *reactions.Service {
	return &reactions.Service{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Posts:        &fakePostRepo{exists: true},
		Comments:     &fakeCommentRepo{},
		Likes:        likes,
		CommentLikes: commentLikes,
		Changes:      &changeRecorder{},
	}
}

func TestService_React(t *testing.T) {
	t.Parallel()

	t.Run("first reaction inserts", func(t *testing.T) {
		t.Parallel()

		likes := &fakeLikeRepo{}
		service := newService(likes, &fakeCommentLikeRepo{})

		action, err := service.React(t.Context(), "alice", "post-1", core.ReactionLove)

		require.NoError(t, err)
		require.Equal(t, reactions.ActionAdded, action)
		require.NotNil(t, likes.inserted)
		require.Equal(t, core.ReactionLove, likes.inserted.ReactionType)
	})

	t.Run("same type again removes the reaction", func(t *testing.T) {
		t.Parallel()

		likes := &fakeLikeRepo{current: &core.LikeModel{UserID: "alice", PostID: "post-1", ReactionType: core.ReactionLove}}
		service := newService(likes, &fakeCommentLikeRepo{})

		action, err := service.React(t.Context(), "alice", "post-1", core.ReactionLove)

		require.NoError(t, err)
		require.Equal(t, reactions.ActionRemoved, action)
		require.True(t, likes.deleted)
		require.Nil(t, likes.inserted)
	})

	t.Run("different type updates in place", func(t *testing.T) {
		t.Parallel()

		likes := &fakeLikeRepo{current: &core.LikeModel{UserID: "alice", PostID: "post-1", ReactionType: core.ReactionLike}}
		service := newService(likes, &fakeCommentLikeRepo{})

		action, err := service.React(t.Context(), "alice", "post-1", core.ReactionAngry)

		require.NoError(t, err)
		require.Equal(t, reactions.ActionUpdated, action)
		require.NotNil(t, likes.updated)
		require.Equal(t, core.ReactionAngry, *likes.updated)
		require.Nil(t, likes.inserted)
		require.False(t, likes.deleted)
	})

	t.Run("empty type defaults to like", func(t *testing.T) {
		t.Parallel()

		likes := &fakeLikeRepo{}
		service := newService(likes, &fakeCommentLikeRepo{})

		_, err := service.React(t.Context(), "alice", "post-1", "")

		require.NoError(t, err)
		require.Equal(t, core.ReactionLike, likes.inserted.ReactionType)
	})

	t.Run("unknown type is invalid", func(t *testing.T) {
		t.Parallel()

		service := newService(&fakeLikeRepo{}, &fakeCommentLikeRepo{})

		_, err := service.React(t.Context(), "alice", "post-1", "dislike")

		require.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()

		service := newService(&fakeLikeRepo{}, &fakeCommentLikeRepo{})
		service.Posts = &fakePostRepo{exists: false}

		_, err := service.React(t.Context(), "alice", "nope", core.ReactionLike)

		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("anonymous reaction is unauthorized", func(t *testing.T) {
		t.Parallel()

		service := newService(&fakeLikeRepo{}, &fakeCommentLikeRepo{})

		_, err := service.React(t.Context(), "", "post-1", core.ReactionLike)

		require.ErrorIs(t, err, core.ErrUnauthorized)
	})
}

func TestService_ToggleCommentLike(t *testing.T) {
	t.Parallel()

	t.Run("unliked comment gets liked", func(t *testing.T) {
		t.Parallel()

		commentLikes := &fakeCommentLikeRepo{}
		service := newService(&fakeLikeRepo{}, commentLikes)

		action, err := service.ToggleCommentLike(t.Context(), "alice", "comment-1")

		require.NoError(t, err)
		require.Equal(t, reactions.ActionAdded, action)
		require.True(t, commentLikes.inserted)
	})

	t.Run("liked comment gets unliked", func(t *testing.T) {
		t.Parallel()

		commentLikes := &fakeCommentLikeRepo{liked: true}
		service := newService(&fakeLikeRepo{}, commentLikes)

		action, err := service.ToggleCommentLike(t.Context(), "alice", "comment-1")

		require.NoError(t, err)
		require.Equal(t, reactions.ActionRemoved, action)
		require.True(t, commentLikes.deleted)
	})

	t.Run("missing comment is not found", func(t *testing.T) {
		t.Parallel()

		service := newService(&fakeLikeRepo{}, &fakeCommentLikeRepo{})
		service.Comments = &fakeCommentRepo{getErr: core.ErrNotFound}

		_, err := service.ToggleCommentLike(t.Context(), "alice", "nope")

		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestService_PostSummary(t *testing.T) {
	t.Parallel()

	likes := &fakeLikeRepo{current: &core.LikeModel{UserID: "alice", PostID: "post-1", ReactionType: core.ReactionWow}}
	service := newService(likes, &fakeCommentLikeRepo{})

	t.Run("viewer's own reaction is surfaced", func(t *testing.T) {
		t.Parallel()

		summary, err := service.PostSummary(t.Context(), "alice", "post-1")

		require.NoError(t, err)
		require.Equal(t, 1, summary.Counts[core.ReactionWow])
		require.Equal(t, 0, summary.Counts[core.ReactionLike])
		require.Len(t, summary.Counts, len(core.ReactionTypes))
		require.NotNil(t, summary.ViewerReaction)
		require.Equal(t, core.ReactionWow, *summary.ViewerReaction)
	})

	t.Run("anonymous viewer gets counts only", func(t *testing.T) {
		t.Parallel()

		summary, err := service.PostSummary(t.Context(), "", "post-1")

		require.NoError(t, err)
		require.Equal(t, 1, summary.Counts[core.ReactionWow])
		require.Nil(t, summary.ViewerReaction)
	})
}
