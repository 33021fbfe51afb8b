package profiles

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"openfeed/internal/core"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) Get(ctx context.Context, id string) (core.ProfileModel, error) {
	var profile core.ProfileModel
	err := r.DB.Model(&core.ProfileModel{}).WithContext(ctx).First(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile, core.ErrNotFound
	}
	return profile, err
}

func (r *Repository) GetMany(ctx context.Context, ids []string) (map[string]core.ProfileModel, error) {
	if len(ids) == 0 {
		return map[string]core.ProfileModel{}, nil
	}

	var profiles []core.ProfileModel
	err := r.DB.Model(&core.ProfileModel{}).WithContext(ctx).
		Where("id IN ?", lo.Uniq(ids)).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}

	return lo.KeyBy(profiles, func(p core.ProfileModel) string {
		return p.ID
	}), nil
}
