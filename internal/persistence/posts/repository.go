package posts

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"openfeed/internal/core"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) Insert(ctx context.Context, post *core.PostModel) error {
	return r.DB.Model(&core.PostModel{}).WithContext(ctx).Create(post).Error
}

func (r *Repository) Get(ctx context.Context, id string) (core.PostModel, error) {
	var post core.PostModel
	err := r.DB.Model(&core.PostModel{}).WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return post, core.ErrNotFound
	}
	return post, err
}

func (r *Repository) ListAll(ctx context.Context) ([]core.PostModel, error) {
	var posts []core.PostModel
	err := r.DB.Model(&core.PostModel{}).WithContext(ctx).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *Repository) ListByAuthor(ctx context.Context, userID string) ([]core.PostModel, error) {
	var posts []core.PostModel
	err := r.DB.Model(&core.PostModel{}).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *Repository) ListCreatedSince(ctx context.Context, since time.Time) ([]core.PostModel, error) {
	var posts []core.PostModel
	err := r.DB.Model(&core.PostModel{}).WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// DeleteOwned deletes the post only when userID is its author, so ownership
// is enforced by the write predicate itself. The returned count lets the
// caller distinguish "gone" from "not yours".
func (r *Repository) DeleteOwned(ctx context.Context, id, userID string) (int64, error) {
	res := r.DB.Model(&core.PostModel{}).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&core.PostModel{})
	return res.RowsAffected, res.Error
}

func (r *Repository) CountVisibleByAuthor(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&core.PostModel{}).WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, core.StatusRejected).
		Count(&count).Error
	return count, err
}

func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.DB.Model(&core.PostModel{}).WithContext(ctx).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
