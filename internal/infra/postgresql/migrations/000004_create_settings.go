package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/domain-alerts/internal/repository"
	"gorm.io/gorm"
)

func createSettingsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_settings",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.SettingModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`INSERT INTO settings (key, value, updated_at) VALUES ('` + repository.SettingNotificationThresholds + `', '30,15,7,3,1', NOW()) ON CONFLICT (key) DO NOTHING`,
				`INSERT INTO settings (key, value, updated_at) VALUES ('` + repository.SettingNotificationCooldownHours + `', '23', NOW()) ON CONFLICT (key) DO NOTHING`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SettingModel{})
		},
	}
}
