package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 100

type LedgerRepository interface {
	Append(ctx context.Context, a *domain.AlertAttempt) error
	WasSentSince(ctx context.Context, domainID string, notificationType domain.NotificationType, since time.Time) (bool, error)
	ListByDomain(ctx context.Context, domainID string, limit int) ([]domain.AlertAttempt, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormLedgerRepo is the append-only alert ledger. Rows are only ever
// inserted, except by the explicit retention purge.
type GormLedgerRepo struct {
	db *gorm.DB
}

func NewGormLedgerRepo(db *gorm.DB) *GormLedgerRepo {
	return &GormLedgerRepo{db: db}
}

func (r *GormLedgerRepo) Append(ctx context.Context, a *domain.AlertAttempt) error {
	if a == nil {
		return fmt.Errorf("%w: attempt is required", domain.ErrValidation)
	}
	if strings.TrimSpace(a.ID) == "" {
		a.ID = uuid.NewString()
	}
	if err := a.Validate(); err != nil {
		return err
	}

	model := attemptModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	*a = *attemptModelToDomain(model)
	return nil
}

func (r *GormLedgerRepo) WasSentSince(
	ctx context.Context,
	domainID string,
	notificationType domain.NotificationType,
	since time.Time,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&AlertAttemptModel{}).
		Where("domain_id = ? AND notification_type = ? AND status = ? AND sent_at >= ?",
			domainID, notificationType, domain.AttemptStatusSent, since).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormLedgerRepo) ListByDomain(ctx context.Context, domainID string, limit int) ([]domain.AlertAttempt, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var models []AlertAttemptModel
	err := r.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.AlertAttempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *attemptModelToDomain(&models[i]))
	}
	return attempts, nil
}

// DeleteOlderThan is the retention purge.
func (r *GormLedgerRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("sent_at < ?", cutoff).
		Delete(&AlertAttemptModel{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
