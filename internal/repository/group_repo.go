package repository

import (
	"context"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

type GroupRepository interface {
	ActiveChannels(ctx context.Context, groupID string) ([]domain.Channel, error)
}

type GormGroupRepo struct {
	db *gorm.DB
}

func NewGormGroupRepo(db *gorm.DB) *GormGroupRepo {
	return &GormGroupRepo{db: db}
}

// ActiveChannels returns the active channels of a group. A missing group
// yields an empty list.
func (r *GormGroupRepo) ActiveChannels(ctx context.Context, groupID string) ([]domain.Channel, error) {
	var models []NotificationChannelModel
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND is_active = ?", groupID, true).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	channels := make([]domain.Channel, 0, len(models))
	for i := range models {
		ch, err := channelModelToDomain(&models[i])
		if err != nil {
			// Undecodable config is sent as empty so the channel fails
			// validation and is recorded as a failed attempt.
			models[i].Config = nil
			if ch, err = channelModelToDomain(&models[i]); err != nil {
				return nil, err
			}
		}
		channels = append(channels, *ch)
	}
	return channels, nil
}

// CachedGroupRepo memoizes ActiveChannels per group for ttl. Many domains
// share a group, so a run loads each group once.
type CachedGroupRepo struct {
	next  GroupRepository
	cache *gocache.Cache
}

func NewCachedGroupRepo(next GroupRepository, ttl time.Duration) *CachedGroupRepo {
	return &CachedGroupRepo{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *CachedGroupRepo) ActiveChannels(ctx context.Context, groupID string) ([]domain.Channel, error) {
	if cached, ok := r.cache.Get(groupID); ok {
		return cached.([]domain.Channel), nil
	}

	channels, err := r.next.ActiveChannels(ctx, groupID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(groupID, channels)
	return channels, nil
}

// Flush drops every cached group.
func (r *CachedGroupRepo) Flush() {
	r.cache.Flush()
}
