package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/domain-alerts/internal/repository"
	"gorm.io/gorm"
)

func createAlertAttemptsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_alert_attempts",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.AlertAttemptModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_alert_attempts_dedup ON alert_attempts (domain_id, notification_type, status, sent_at)`,
				`CREATE INDEX IF NOT EXISTS idx_alert_attempts_sent_at ON alert_attempts (sent_at)`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.AlertAttemptModel{})
		},
	}
}
