package likes

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"openfeed/internal/core"
	"openfeed/internal/persistence/pgerrors"
)

// Repository stores typed post reactions, unique per (user, post).
type Repository struct {
	DB core.DB
}

func (r *Repository) Find(ctx context.Context, userID, postID string) (*core.LikeModel, error) {
	var like core.LikeModel
	err := r.DB.Model(&core.LikeModel{}).WithContext(ctx).
		First(&like, "user_id = ? AND post_id = ?", userID, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Insert creates the reaction row. When a concurrent insert wins the race on
// the (user, post) unique index, the losing write degrades to an update of
// the existing row: last write wins on the reaction type.
func (r *Repository) Insert(ctx context.Context, like *core.LikeModel) error {
	err := r.DB.Model(&core.LikeModel{}).WithContext(ctx).Create(like).Error
	if pgerrors.IsUniqueViolation(err) {
		return r.UpdateType(ctx, like.UserID, like.PostID, like.ReactionType)
	}
	return err
}

func (r *Repository) UpdateType(ctx context.Context, userID, postID string, t core.ReactionType) error {
	return r.DB.Model(&core.LikeModel{}).WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Update("reaction_type", t).Error
}

func (r *Repository) Delete(ctx context.Context, userID, postID string) error {
	return r.DB.Model(&core.LikeModel{}).WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&core.LikeModel{}).Error
}

func (r *Repository) ListByPosts(ctx context.Context, postIDs []string) ([]core.LikeModel, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	var likes []core.LikeModel
	err := r.DB.Model(&core.LikeModel{}).WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Find(&likes).Error
	return likes, err
}
