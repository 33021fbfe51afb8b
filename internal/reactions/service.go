package reactions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"openfeed/internal/core"
)

// Action describes what a toggle request did to the stored reaction.
type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
)

// Summary is the aggregate reaction state of one post for one viewer.
type Summary struct {
	Counts         map[core.ReactionType]int `json:"reactions_count"`
	ViewerReaction *core.ReactionType        `json:"user_reaction,omitempty"`
}

// CountByType tallies likes per reaction type, always materializing every
// type so clients render stable rows of counters.
func CountByType(likes []core.LikeModel) map[core.ReactionType]int {
	counts := make(map[core.ReactionType]int, len(core.ReactionTypes))
	for _, t := range core.ReactionTypes {
		counts[t] = 0
	}
	for _, like := range likes {
		counts[like.ReactionType]++
	}
	return counts
}

type Service struct {
	Logger       *slog.Logger
	Posts        core.PostRepository
	Comments     core.CommentRepository
	Likes        core.LikeRepository
	CommentLikes core.CommentLikeRepository
	Changes      core.ChangePublisher
}

func (s *Service) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "reactions.Service")
	return nil
}

// React applies toggle semantics to the viewer's single reaction slot on a
// post: no reaction inserts, the same type removes, a different type updates
// the existing row in place.
func (s *Service) React(ctx context.Context, userID, postID string, t core.ReactionType) (Action, error) {
	if userID == "" {
		return "", core.ErrUnauthorized
	}
	if t == "" {
		t = core.ReactionLike
	}
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown reaction type %q", core.ErrInvalidInput, t)
	}

	exists, err := s.Posts.Exists(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: post not found", core.ErrNotFound)
	}

	existing, err := s.Likes.Find(ctx, userID, postID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	var action Action
	switch {
	case existing == nil:
		err = s.Likes.Insert(ctx, &core.LikeModel{
			UserID:       userID,
			PostID:       postID,
			ReactionType: t,
		})
		action = ActionAdded
	case existing.ReactionType == t:
		err = s.Likes.Delete(ctx, userID, postID)
		action = ActionRemoved
	default:
		err = s.Likes.UpdateType(ctx, userID, postID, t)
		action = ActionUpdated
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	s.publish(ctx, core.LikeModel{}.TableName(), postID)

	return action, nil
}

// PostSummary returns count-by-type plus the viewer's own reaction, if any.
func (s *Service) PostSummary(ctx context.Context, viewerID, postID string) (Summary, error) {
	likes, err := s.Likes.ListByPosts(ctx, []string{postID})
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	summary := Summary{Counts: CountByType(likes)}
	for _, like := range likes {
		if like.UserID == viewerID && viewerID != "" {
			reaction := like.ReactionType
			summary.ViewerReaction = &reaction
			break
		}
	}

	return summary, nil
}

// ToggleCommentLike flips the viewer's binary like on a comment.
func (s *Service) ToggleCommentLike(ctx context.Context, userID, commentID string) (Action, error) {
	if userID == "" {
		return "", core.ErrUnauthorized
	}

	if _, err := s.Comments.Get(ctx, commentID); err != nil {
		return "", err
	}

	liked, err := s.CommentLikes.Exists(ctx, userID, commentID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	var action Action
	if liked {
		err = s.CommentLikes.Delete(ctx, userID, commentID)
		action = ActionRemoved
	} else {
		err = s.CommentLikes.Insert(ctx, &core.CommentLikeModel{
			UserID:    userID,
			CommentID: commentID,
		})
		action = ActionAdded
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	s.publish(ctx, core.CommentLikeModel{}.TableName(), commentID)

	return action, nil
}

// CommentLikeSummary returns the like count and the viewer's like state.
func (s *Service) CommentLikeSummary(ctx context.Context, viewerID, commentID string) (int64, bool, error) {
	counts, err := s.CommentLikes.CountByComments(ctx, []string{commentID})
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	liked := false
	if viewerID != "" {
		likedMap, err := s.CommentLikes.LikedByUser(ctx, viewerID, []string{commentID})
		if err != nil {
			return 0, false, fmt.Errorf("%w: %w", core.ErrStorage, err)
		}
		liked = likedMap[commentID]
	}

	return counts[commentID], liked, nil
}

func (s *Service) publish(ctx context.Context, table, rowID string) {
	err := s.Changes.Publish(ctx, core.ChangeEvent{
		Table: table,
		Op:    core.ChangeUpdate,
		RowID: rowID,
		At:    time.Now().UTC(),
	})
	if err != nil {
		s.Logger.Error("failed to publish change event", "error", err, "table", table, "row", rowID)
	}
}
