package follows

import (
	"context"

	"openfeed/internal/core"
	"openfeed/internal/persistence/pgerrors"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.DB.Model(&core.FollowModel{}).WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Insert(ctx context.Context, follow *core.FollowModel) error {
	err := r.DB.Model(&core.FollowModel{}).WithContext(ctx).Create(follow).Error
	if pgerrors.IsUniqueViolation(err) {
		// Already following: the edge exists, which is what was asked for.
		return nil
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, followerID, followingID string) error {
	return r.DB.Model(&core.FollowModel{}).WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&core.FollowModel{}).Error
}

func (r *Repository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&core.FollowModel{}).WithContext(ctx).
		Where("following_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&core.FollowModel{}).WithContext(ctx).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}
