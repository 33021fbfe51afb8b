package comments

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"openfeed/internal/core"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) Insert(ctx context.Context, comment *core.CommentModel) error {
	return r.DB.Model(&core.CommentModel{}).WithContext(ctx).Create(comment).Error
}

func (r *Repository) Get(ctx context.Context, id string) (core.CommentModel, error) {
	var comment core.CommentModel
	err := r.DB.Model(&core.CommentModel{}).WithContext(ctx).First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return comment, core.ErrNotFound
	}
	return comment, err
}

func (r *Repository) ListTopLevel(ctx context.Context, postID string) ([]core.CommentModel, error) {
	var comments []core.CommentModel
	err := r.DB.Model(&core.CommentModel{}).WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *Repository) ListReplies(ctx context.Context, parentIDs []string) (map[string][]core.CommentModel, error) {
	if len(parentIDs) == 0 {
		return map[string][]core.CommentModel{}, nil
	}

	var replies []core.CommentModel
	err := r.DB.Model(&core.CommentModel{}).WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}

	return lo.GroupBy(replies, func(c core.CommentModel) string {
		return *c.ParentID
	}), nil
}

func (r *Repository) CountTopLevel(ctx context.Context, postIDs []string) (map[string]int64, error) {
	if len(postIDs) == 0 {
		return map[string]int64{}, nil
	}

	type countRow struct {
		PostID string
		Count  int64
	}

	var rows []countRow
	err := r.DB.Model(&core.CommentModel{}).WithContext(ctx).
		Select("post_id, count(*) as count").
		Where("post_id IN ? AND parent_id IS NULL", postIDs).
		Group("post_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.Associate(rows, func(row countRow) (string, int64) {
		return row.PostID, row.Count
	}), nil
}

func (r *Repository) UpdateOwned(ctx context.Context, id, userID, content string) (int64, error) {
	res := r.DB.Model(&core.CommentModel{}).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"content":    content,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

// DeleteOwned removes the comment when userID is its author. Replies go with
// it through the parent_id foreign key cascade; the model caps threads at one
// reply tier, so the cascade never runs deeper.
func (r *Repository) DeleteOwned(ctx context.Context, id, userID string) (int64, error) {
	res := r.DB.Model(&core.CommentModel{}).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&core.CommentModel{})
	return res.RowsAffected, res.Error
}
