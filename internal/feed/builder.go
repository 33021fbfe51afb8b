package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"

	"openfeed/internal/core"
	"openfeed/internal/reactions"
	"openfeed/internal/visibility"
)

// Window bounds the trending query.
type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

func (w Window) since(now time.Time) (time.Time, error) {
	switch w {
	case WindowToday, "":
		return now.Truncate(24 * time.Hour), nil
	case WindowWeek:
		return now.AddDate(0, 0, -7), nil
	case WindowMonth:
		return now.AddDate(0, -1, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown trending window %q", core.ErrInvalidInput, w)
	}
}

// PostView is a post enriched for display: author profile, reaction counts
// by type, the viewer's own reaction and the top-level comment count.
type PostView struct {
	core.PostModel
	Author         *core.AuthorSummary       `json:"author"`
	ReactionsCount map[core.ReactionType]int `json:"reactions_count"`
	UserReaction   *core.ReactionType        `json:"user_reaction,omitempty"`
	LikesCount     int                       `json:"likes_count"`
	CommentsCount  int64                     `json:"comments_count"`
}

func (v PostView) engagement() int64 {
	return int64(v.LikesCount) + 2*v.CommentsCount
}

// Builder assembles the post read paths. Every path materializes its rows,
// runs them through the visibility policy and then enriches the survivors
// in bulk.
type Builder struct {
	Logger   *slog.Logger
	Posts    core.PostRepository
	Likes    core.LikeRepository
	Comments core.CommentRepository
	Profiles core.ProfileRepository

	policy visibility.Policy
}

func (b *Builder) Init(_ context.Context) error {
	b.Logger = b.Logger.With("component", "feed.Builder")
	return nil
}

// Feed returns approved posts, newest first.
func (b *Builder) Feed(ctx context.Context, viewerID string) ([]PostView, error) {
	posts, err := b.Posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	return b.enrich(ctx, viewerID, b.policy.Filter(visibility.AudiencePublic, viewerID, posts))
}

// Popular returns approved posts ranked by total reactions.
func (b *Builder) Popular(ctx context.Context, viewerID string) ([]PostView, error) {
	views, err := b.Feed(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].LikesCount > views[j].LikesCount
	})

	return views, nil
}

// Trending returns approved posts created within the window, ranked by
// engagement. A comment weighs twice a reaction.
func (b *Builder) Trending(ctx context.Context, viewerID string, window Window) ([]PostView, error) {
	since, err := window.since(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	posts, err := b.Posts.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	views, err := b.enrich(ctx, viewerID, b.policy.Filter(visibility.AudiencePublic, viewerID, posts))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].engagement() > views[j].engagement()
	})

	return views, nil
}

// ByAuthor returns one user's posts: the owner audience when the viewer is
// that user, the public audience otherwise.
func (b *Builder) ByAuthor(ctx context.Context, viewerID, authorID string) ([]PostView, error) {
	audience := visibility.AudiencePublic
	if viewerID != "" && viewerID == authorID {
		audience = visibility.AudienceOwner
	}

	posts, err := b.Posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	return b.enrich(ctx, viewerID, b.policy.Filter(audience, viewerID, posts))
}

// Recent returns the caller's own non-rejected posts.
func (b *Builder) Recent(ctx context.Context, viewerID string) ([]PostView, error) {
	if viewerID == "" {
		return nil, core.ErrUnauthorized
	}
	return b.ByAuthor(ctx, viewerID, viewerID)
}

// Rejected returns the caller's own rejected posts, verdicts included, so
// authors can see why a submission never published.
func (b *Builder) Rejected(ctx context.Context, viewerID string) ([]PostView, error) {
	if viewerID == "" {
		return nil, core.ErrUnauthorized
	}

	posts, err := b.Posts.ListByAuthor(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	return b.enrich(ctx, viewerID, b.policy.Filter(visibility.AudienceOwnerRejected, viewerID, posts))
}

func (b *Builder) enrich(ctx context.Context, viewerID string, posts []core.PostModel) ([]PostView, error) {
	if len(posts) == 0 {
		return []PostView{}, nil
	}

	postIDs := lo.Map(posts, func(p core.PostModel, _ int) string { return p.ID })
	authorIDs := lo.Uniq(lo.Map(posts, func(p core.PostModel, _ int) string { return p.UserID }))

	likes, err := b.Likes.ListByPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	likesByPost := lo.GroupBy(likes, func(l core.LikeModel) string { return l.PostID })

	commentCounts, err := b.Comments.CountTopLevel(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	authors, err := b.Profiles.GetMany(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	return lo.Map(posts, func(p core.PostModel, _ int) PostView {
		postLikes := likesByPost[p.ID]

		view := PostView{
			PostModel:      p,
			ReactionsCount: reactions.CountByType(postLikes),
			LikesCount:     len(postLikes),
			CommentsCount:  commentCounts[p.ID],
		}
		if author, ok := authors[p.UserID]; ok {
			summary := author.Summary()
			view.Author = &summary
		}
		if viewerID != "" {
			for _, like := range postLikes {
				if like.UserID == viewerID {
					reaction := like.ReactionType
					view.UserReaction = &reaction
					break
				}
			}
		}
		return view
	}), nil
}
