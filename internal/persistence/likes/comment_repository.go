package likes

import (
	"context"

	"github.com/samber/lo"

	"openfeed/internal/core"
	"openfeed/internal/persistence/pgerrors"
)

// CommentRepository stores binary comment likes, unique per (user, comment).
type CommentRepository struct {
	DB core.DB
}

func (r *CommentRepository) Exists(ctx context.Context, userID, commentID string) (bool, error) {
	var count int64
	err := r.DB.Model(&core.CommentLikeModel{}).WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Count(&count).Error
	return count > 0, err
}

func (r *CommentRepository) Insert(ctx context.Context, like *core.CommentLikeModel) error {
	err := r.DB.Model(&core.CommentLikeModel{}).WithContext(ctx).Create(like).Error
	if pgerrors.IsUniqueViolation(err) {
		// A concurrent like already landed; the toggle state is as requested.
		return nil
	}
	return err
}

func (r *CommentRepository) Delete(ctx context.Context, userID, commentID string) error {
	return r.DB.Model(&core.CommentLikeModel{}).WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&core.CommentLikeModel{}).Error
}

func (r *CommentRepository) CountByComments(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	if len(commentIDs) == 0 {
		return map[string]int64{}, nil
	}

	type countRow struct {
		CommentID string
		Count     int64
	}

	var rows []countRow
	err := r.DB.Model(&core.CommentLikeModel{}).WithContext(ctx).
		Select("comment_id, count(*) as count").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.Associate(rows, func(row countRow) (string, int64) {
		return row.CommentID, row.Count
	}), nil
}

func (r *CommentRepository) LikedByUser(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error) {
	if len(commentIDs) == 0 {
		return map[string]bool{}, nil
	}

	var liked []string
	err := r.DB.Model(&core.CommentLikeModel{}).WithContext(ctx).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &liked).Error
	if err != nil {
		return nil, err
	}

	return lo.Associate(liked, func(id string) (string, bool) {
		return id, true
	}), nil
}
