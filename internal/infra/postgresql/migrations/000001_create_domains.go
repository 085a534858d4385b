package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/domain-alerts/internal/repository"
	"gorm.io/gorm"
)

func createDomainsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_domains",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.DomainModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_domains_active ON domains (name) WHERE is_active`,
				`CREATE INDEX IF NOT EXISTS idx_domains_group ON domains (notification_group_id) WHERE notification_group_id IS NOT NULL`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.DomainModel{})
		},
	}
}
