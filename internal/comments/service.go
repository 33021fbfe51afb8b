package comments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"openfeed/internal/core"
)

// maxDepth caps threads at a top-level comment plus one reply tier. A reply
// to a reply is rejected instead of silently flattened.
const maxDepth = 2

// View is a comment with its display enrichment, nested one level deep.
type View struct {
	core.CommentModel
	Author        *core.AuthorSummary `json:"author"`
	LikeCount     int64               `json:"like_count"`
	LikedByViewer bool                `json:"liked_by_viewer"`
	Replies       []View              `json:"replies"`
	RepliesCount  int                 `json:"replies_count"`
}

type Service struct {
	Logger       *slog.Logger
	Posts        core.PostRepository
	Comments     core.CommentRepository
	CommentLikes core.CommentLikeRepository
	Profiles     core.ProfileRepository
	Changes      core.ChangePublisher
}

func (s *Service) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "comments.Service")
	return nil
}

// Create attaches a comment to an existing post, optionally under a
// top-level parent comment on the same post.
func (s *Service) Create(ctx context.Context, userID, postID, content string, parentID *string) (core.CommentModel, error) {
	if userID == "" {
		return core.CommentModel{}, core.ErrUnauthorized
	}
	if strings.TrimSpace(content) == "" {
		return core.CommentModel{}, fmt.Errorf("%w: comment content is required", core.ErrInvalidInput)
	}

	exists, err := s.Posts.Exists(ctx, postID)
	if err != nil {
		return core.CommentModel{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	if !exists {
		return core.CommentModel{}, fmt.Errorf("%w: post not found", core.ErrNotFound)
	}

	if parentID != nil {
		parent, err := s.Comments.Get(ctx, *parentID)
		if err != nil {
			return core.CommentModel{}, err
		}
		if parent.PostID != postID {
			return core.CommentModel{}, fmt.Errorf("%w: parent comment belongs to another post", core.ErrInvalidInput)
		}
		if parent.ParentID != nil {
			return core.CommentModel{}, fmt.Errorf("%w: replies cannot be nested deeper than %d levels", core.ErrInvalidInput, maxDepth)
		}
	}

	comment := core.CommentModel{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  strings.TrimSpace(content),
	}

	if err := s.Comments.Insert(ctx, &comment); err != nil {
		return core.CommentModel{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	s.publish(ctx, core.ChangeInsert, comment.ID)

	return comment, nil
}

// Update edits the caller's own comment and bumps updated_at.
func (s *Service) Update(ctx context.Context, userID, commentID, content string) (core.CommentModel, error) {
	if userID == "" {
		return core.CommentModel{}, core.ErrUnauthorized
	}
	if strings.TrimSpace(content) == "" {
		return core.CommentModel{}, fmt.Errorf("%w: comment content is required", core.ErrInvalidInput)
	}

	rows, err := s.Comments.UpdateOwned(ctx, commentID, userID, strings.TrimSpace(content))
	if err != nil {
		return core.CommentModel{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	if rows == 0 {
		return core.CommentModel{}, s.ownershipError(ctx, commentID)
	}

	s.publish(ctx, core.ChangeUpdate, commentID)

	return s.Comments.Get(ctx, commentID)
}

// Delete removes the caller's own comment; its replies cascade one level.
func (s *Service) Delete(ctx context.Context, userID, commentID string) error {
	if userID == "" {
		return core.ErrUnauthorized
	}

	rows, err := s.Comments.DeleteOwned(ctx, commentID, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	if rows == 0 {
		return s.ownershipError(ctx, commentID)
	}

	s.publish(ctx, core.ChangeDelete, commentID)

	return nil
}

// Thread returns the post's top-level comments with their reply tier,
// authors and like counts.
func (s *Service) Thread(ctx context.Context, viewerID, postID string) ([]View, error) {
	topLevel, err := s.Comments.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	parentIDs := lo.Map(topLevel, func(c core.CommentModel, _ int) string { return c.ID })
	replies, err := s.Comments.ListReplies(ctx, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	all := append(lo.Flatten(lo.Values(replies)), topLevel...)
	allIDs := lo.Map(all, func(c core.CommentModel, _ int) string { return c.ID })
	authorIDs := lo.Map(all, func(c core.CommentModel, _ int) string { return c.UserID })

	likeCounts, err := s.CommentLikes.CountByComments(ctx, allIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	likedByViewer := map[string]bool{}
	if viewerID != "" {
		likedByViewer, err = s.CommentLikes.LikedByUser(ctx, viewerID, allIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
		}
	}

	authors, err := s.Profiles.GetMany(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	view := func(c core.CommentModel, nested []View) View {
		v := View{
			CommentModel:  c,
			LikeCount:     likeCounts[c.ID],
			LikedByViewer: likedByViewer[c.ID],
			Replies:       nested,
			RepliesCount:  len(nested),
		}
		if author, ok := authors[c.UserID]; ok {
			summary := author.Summary()
			v.Author = &summary
		}
		return v
	}

	return lo.Map(topLevel, func(c core.CommentModel, _ int) View {
		nested := lo.Map(replies[c.ID], func(reply core.CommentModel, _ int) View {
			return view(reply, []View{})
		})
		return view(c, nested)
	}), nil
}

// ownershipError distinguishes "someone else's comment" from "no such
// comment" after a zero-row owned write.
func (s *Service) ownershipError(ctx context.Context, commentID string) error {
	_, err := s.Comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	return core.ErrForbidden
}

func (s *Service) publish(ctx context.Context, op core.ChangeOp, commentID string) {
	err := s.Changes.Publish(ctx, core.ChangeEvent{
		Table: core.CommentModel{}.TableName(),
		Op:    op,
		RowID: commentID,
		At:    time.Now().UTC(),
	})
	if err != nil {
		s.Logger.Error("failed to publish change event", "error", err, "comment", commentID)
	}
}
