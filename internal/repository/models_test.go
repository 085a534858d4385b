package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"gorm.io/datatypes"
)

func TestDomainModelToDomainDecodesSnapshot(t *testing.T) {
	t.Parallel()

	exp := time.Date(2026, 8, 13, 4, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(domain.LookupSnapshot{
		Registrar:      "Example Registrar",
		ExpirationDate: &exp,
		StatusTokens:   []string{"active"},
		Source:         "rdap",
	})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	d, err := domainModelToDomain(&DomainModel{
		ID:            "d-1",
		Name:          "example.com",
		Status:        domain.StatusActive,
		RawLookupData: datatypes.JSON(raw),
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("domainModelToDomain() error = %v", err)
	}

	if d.RawLookupData == nil {
		t.Fatal("RawLookupData = nil, want snapshot")
	}
	if d.RawLookupData.Registrar != "Example Registrar" {
		t.Fatalf("Registrar = %q, want %q", d.RawLookupData.Registrar, "Example Registrar")
	}
	if !d.RawLookupData.ExpirationDate.Equal(exp) {
		t.Fatalf("ExpirationDate = %v, want %v", d.RawLookupData.ExpirationDate, exp)
	}
}

func TestDomainModelToDomainNullSnapshot(t *testing.T) {
	t.Parallel()

	for _, raw := range []datatypes.JSON{nil, datatypes.JSON("null")} {
		d, err := domainModelToDomain(&DomainModel{ID: "d-1", RawLookupData: raw})
		if err != nil {
			t.Fatalf("domainModelToDomain() error = %v", err)
		}
		if d.RawLookupData != nil {
			t.Fatalf("RawLookupData = %+v, want nil", d.RawLookupData)
		}
	}

	if _, err := domainModelToDomain(&DomainModel{ID: "d-1", RawLookupData: datatypes.JSON("{bad")}); err == nil {
		t.Fatal("domainModelToDomain() should fail on malformed snapshot")
	}
}

func TestChannelModelToDomain(t *testing.T) {
	t.Parallel()

	ch, err := channelModelToDomain(&NotificationChannelModel{
		ID:          "c-1",
		GroupID:     "g-1",
		ChannelType: domain.ChannelTypeTelegram,
		Config:      datatypes.JSON(`{"bot_token":"123:abc","chat_id":"42"}`),
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("channelModelToDomain() error = %v", err)
	}
	if ch.Config["chat_id"] != "42" {
		t.Fatalf("Config[chat_id] = %q, want %q", ch.Config["chat_id"], "42")
	}
	if ch.ChannelType != domain.ChannelTypeTelegram {
		t.Fatalf("ChannelType = %q, want %q", ch.ChannelType, domain.ChannelTypeTelegram)
	}
}

func TestCheckResultColumns(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 22, 9, 0, 0, 0, time.UTC)
	cols, err := checkResultColumns(domain.CheckResult{
		Registrar:     "R",
		Status:        domain.StatusError,
		RawLookupData: &domain.LookupSnapshot{Source: "rdap", FetchedAt: now},
		LastChecked:   now,
	})
	if err != nil {
		t.Fatalf("checkResultColumns() error = %v", err)
	}

	for _, key := range []string{"registrar", "expiration_date", "status", "raw_lookup_data", "last_checked"} {
		if _, ok := cols[key]; !ok {
			t.Fatalf("column %q missing from update", key)
		}
	}
	if cols["status"] != domain.StatusError {
		t.Fatalf("status = %v, want %v", cols["status"], domain.StatusError)
	}

	cols, err = checkResultColumns(domain.CheckResult{Status: domain.StatusError, LastChecked: now})
	if err != nil {
		t.Fatalf("checkResultColumns() error = %v", err)
	}
	if string(cols["raw_lookup_data"].(datatypes.JSON)) != "null" {
		t.Fatalf("raw_lookup_data = %s, want null", cols["raw_lookup_data"])
	}
}

func TestAttemptModelRoundTrip(t *testing.T) {
	t.Parallel()

	msg := "slack channel error: status=500"
	a := &domain.AlertAttempt{
		ID:               "a-1",
		DomainID:         "d-1",
		NotificationType: domain.ExpiringInType(7),
		ChannelType:      domain.ChannelTypeSlack,
		Message:          "text",
		Status:           domain.AttemptStatusFailed,
		ErrorMessage:     &msg,
		SentAt:           time.Date(2026, 2, 22, 9, 0, 0, 0, time.UTC),
	}

	got := attemptModelToDomain(attemptModelFromDomain(a))
	if *got.ErrorMessage != msg || got.NotificationType != a.NotificationType || !got.SentAt.Equal(a.SentAt) {
		t.Fatalf("round trip = %+v, want %+v", got, a)
	}
}
