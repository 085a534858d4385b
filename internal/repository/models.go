package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"gorm.io/datatypes"
)

// DomainModel is the persistence model for the domains table.
type DomainModel struct {
	ID                  string         `gorm:"type:uuid;primaryKey"`
	Name                string         `gorm:"type:varchar(253);not null;uniqueIndex"`
	Registrar           string         `gorm:"type:varchar(255);not null;default:''"`
	ExpirationDate      *time.Time     `gorm:"type:timestamptz"`
	Status              domain.Status  `gorm:"type:varchar(20);not null;default:'active'"`
	RawLookupData       datatypes.JSON `gorm:"type:jsonb"`
	NotificationGroupID *string        `gorm:"type:uuid"`
	IsActive            bool           `gorm:"not null;default:true"`
	LastChecked         *time.Time     `gorm:"type:timestamptz"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (DomainModel) TableName() string {
	return "domains"
}

// NotificationGroupModel is the persistence model for notification_groups.
type NotificationGroupModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (NotificationGroupModel) TableName() string {
	return "notification_groups"
}

// NotificationChannelModel is the persistence model for notification_channels.
type NotificationChannelModel struct {
	ID          string             `gorm:"type:uuid;primaryKey"`
	GroupID     string             `gorm:"type:uuid;not null;index"`
	ChannelType domain.ChannelType `gorm:"type:varchar(20);not null"`
	Config      datatypes.JSON     `gorm:"type:jsonb;not null"`
	IsActive    bool               `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (NotificationChannelModel) TableName() string {
	return "notification_channels"
}

// AlertAttemptModel is the persistence model for the append-only
// alert_attempts ledger.
type AlertAttemptModel struct {
	ID               string                  `gorm:"type:uuid;primaryKey"`
	DomainID         string                  `gorm:"type:uuid;not null"`
	NotificationType domain.NotificationType `gorm:"type:varchar(50);not null"`
	ChannelType      domain.ChannelType      `gorm:"type:varchar(20);not null"`
	Message          string                  `gorm:"type:text;not null"`
	Status           domain.AttemptStatus    `gorm:"type:varchar(10);not null"`
	ErrorMessage     *string                 `gorm:"type:text"`
	SentAt           time.Time               `gorm:"type:timestamptz;not null"`
}

func (AlertAttemptModel) TableName() string {
	return "alert_attempts"
}

// SettingModel is a key/value row of the settings table.
type SettingModel struct {
	Key       string `gorm:"type:varchar(100);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SettingModel) TableName() string {
	return "settings"
}

func domainModelToDomain(m *DomainModel) (*domain.Domain, error) {
	if m == nil {
		return nil, nil
	}

	d := &domain.Domain{
		ID:                  m.ID,
		Name:                m.Name,
		Registrar:           m.Registrar,
		ExpirationDate:      m.ExpirationDate,
		Status:              m.Status,
		NotificationGroupID: m.NotificationGroupID,
		IsActive:            m.IsActive,
		LastChecked:         m.LastChecked,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}

	if len(m.RawLookupData) > 0 && string(m.RawLookupData) != "null" {
		var snapshot domain.LookupSnapshot
		if err := json.Unmarshal(m.RawLookupData, &snapshot); err != nil {
			return nil, fmt.Errorf("decode raw lookup data for domain %s: %w", m.ID, err)
		}
		d.RawLookupData = &snapshot
	}

	return d, nil
}

func channelModelToDomain(m *NotificationChannelModel) (*domain.Channel, error) {
	if m == nil {
		return nil, nil
	}

	cfg := map[string]string{}
	if len(m.Config) > 0 {
		if err := json.Unmarshal(m.Config, &cfg); err != nil {
			return nil, fmt.Errorf("decode config for channel %s: %w", m.ID, err)
		}
	}

	return &domain.Channel{
		ID:          m.ID,
		GroupID:     m.GroupID,
		ChannelType: m.ChannelType,
		Config:      cfg,
		IsActive:    m.IsActive,
	}, nil
}

func attemptModelFromDomain(a *domain.AlertAttempt) *AlertAttemptModel {
	if a == nil {
		return nil
	}

	return &AlertAttemptModel{
		ID:               a.ID,
		DomainID:         a.DomainID,
		NotificationType: a.NotificationType,
		ChannelType:      a.ChannelType,
		Message:          a.Message,
		Status:           a.Status,
		ErrorMessage:     a.ErrorMessage,
		SentAt:           a.SentAt,
	}
}

func attemptModelToDomain(m *AlertAttemptModel) *domain.AlertAttempt {
	if m == nil {
		return nil
	}

	return &domain.AlertAttempt{
		ID:               m.ID,
		DomainID:         m.DomainID,
		NotificationType: m.NotificationType,
		ChannelType:      m.ChannelType,
		Message:          m.Message,
		Status:           m.Status,
		ErrorMessage:     m.ErrorMessage,
		SentAt:           m.SentAt,
	}
}

// checkResultColumns maps a check result onto the column set written in
// one UPDATE.
func checkResultColumns(r domain.CheckResult) (map[string]any, error) {
	raw := datatypes.JSON("null")
	if r.RawLookupData != nil {
		b, err := json.Marshal(r.RawLookupData)
		if err != nil {
			return nil, fmt.Errorf("encode raw lookup data: %w", err)
		}
		raw = datatypes.JSON(b)
	}

	return map[string]any{
		"registrar":       r.Registrar,
		"expiration_date": r.ExpirationDate,
		"status":          r.Status,
		"raw_lookup_data": raw,
		"last_checked":    r.LastChecked,
	}, nil
}
