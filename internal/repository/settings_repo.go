package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"gorm.io/gorm"
)

const (
	SettingNotificationThresholds    = "notification_thresholds"
	SettingNotificationCooldownHours = "notification_cooldown_hours"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
}

type GormSettingsRepo struct {
	db *gorm.DB
}

func NewGormSettingsRepo(db *gorm.DB) *GormSettingsRepo {
	return &GormSettingsRepo{db: db}
}

// Get returns domain.ErrNotFound when the key is unset.
func (r *GormSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var model SettingModel
	err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return model.Value, nil
}
