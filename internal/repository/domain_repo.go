package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"gorm.io/gorm"
)

type DomainRepository interface {
	ListActive(ctx context.Context) ([]domain.Domain, error)
	GetByID(ctx context.Context, id string) (*domain.Domain, error)
	UpdateCheckResult(ctx context.Context, id string, result domain.CheckResult) error
}

type GormDomainRepo struct {
	db *gorm.DB
}

func NewGormDomainRepo(db *gorm.DB) *GormDomainRepo {
	return &GormDomainRepo{db: db}
}

func (r *GormDomainRepo) ListActive(ctx context.Context) ([]domain.Domain, error) {
	var models []DomainModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	domains := make([]domain.Domain, 0, len(models))
	for i := range models {
		d, err := domainModelToDomain(&models[i])
		if err != nil {
			// An unreadable snapshot must not hide the domain from the run;
			// the next check rewrites it.
			models[i].RawLookupData = nil
			if d, err = domainModelToDomain(&models[i]); err != nil {
				return nil, err
			}
		}
		domains = append(domains, *d)
	}
	return domains, nil
}

func (r *GormDomainRepo) GetByID(ctx context.Context, id string) (*domain.Domain, error) {
	var model DomainModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return domainModelToDomain(&model)
}

// UpdateCheckResult writes all refreshed columns in a single UPDATE.
func (r *GormDomainRepo) UpdateCheckResult(ctx context.Context, id string, result domain.CheckResult) error {
	columns, err := checkResultColumns(result)
	if err != nil {
		return err
	}
	columns["updated_at"] = time.Now().UTC()

	tx := r.db.WithContext(ctx).
		Model(&DomainModel{}).
		Where("id = ?", id).
		Updates(columns)
	if tx.Error != nil {
		return fmt.Errorf("update domain %s: %w", id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
