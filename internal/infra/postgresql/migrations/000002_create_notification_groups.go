package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/domain-alerts/internal/repository"
	"gorm.io/gorm"
)

func createNotificationGroupsTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_notification_groups",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.NotificationGroupModel{}, &repository.NotificationChannelModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`ALTER TABLE notification_channels DROP CONSTRAINT IF EXISTS fk_notification_channels_group`,
				`ALTER TABLE notification_channels ADD CONSTRAINT fk_notification_channels_group FOREIGN KEY (group_id) REFERENCES notification_groups (id) ON DELETE CASCADE`,
				`ALTER TABLE domains DROP CONSTRAINT IF EXISTS fk_domains_notification_group`,
				`ALTER TABLE domains ADD CONSTRAINT fk_domains_notification_group FOREIGN KEY (notification_group_id) REFERENCES notification_groups (id) ON DELETE SET NULL`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec(`ALTER TABLE domains DROP CONSTRAINT IF EXISTS fk_domains_notification_group`).Error; err != nil {
				return err
			}
			return tx.Migrator().DropTable(&repository.NotificationChannelModel{}, &repository.NotificationGroupModel{})
		},
	}
}
