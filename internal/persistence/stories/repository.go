package stories

import (
	"context"
	"time"

	"openfeed/internal/core"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) Insert(ctx context.Context, story *core.StoryModel) error {
	return r.DB.Model(&core.StoryModel{}).WithContext(ctx).Create(story).Error
}

// ListActive returns stories that have not expired yet, newest first. Expiry
// is enforced here on every read, independently of the cleanup job.
func (r *Repository) ListActive(ctx context.Context, now time.Time) ([]core.StoryModel, error) {
	var stories []core.StoryModel
	err := r.DB.Model(&core.StoryModel{}).WithContext(ctx).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Find(&stories).Error
	return stories, err
}

func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.Model(&core.StoryModel{}).WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&core.StoryModel{})
	return res.RowsAffected, res.Error
}
