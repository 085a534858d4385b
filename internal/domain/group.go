package domain

import (
	"fmt"
	"strings"
)

// ChannelType is the tag selecting a channel implementation.
type ChannelType string

const (
	ChannelTypeEmail      ChannelType = "email"
	ChannelTypeWebhook    ChannelType = "webhook"
	ChannelTypeSlack      ChannelType = "slack"
	ChannelTypeDiscord    ChannelType = "discord"
	ChannelTypeTelegram   ChannelType = "telegram"
	ChannelTypeMattermost ChannelType = "mattermost"
)

var ChannelTypes = []ChannelType{
	ChannelTypeEmail,
	ChannelTypeWebhook,
	ChannelTypeSlack,
	ChannelTypeDiscord,
	ChannelTypeTelegram,
	ChannelTypeMattermost,
}

func (c ChannelType) String() string { return string(c) }

func (c ChannelType) IsValid() bool {
	switch c {
	case ChannelTypeEmail, ChannelTypeWebhook, ChannelTypeSlack,
		ChannelTypeDiscord, ChannelTypeTelegram, ChannelTypeMattermost:
		return true
	}
	return false
}

func ParseChannelTypeFromString(s string) (ChannelType, error) {
	ct := ChannelType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.IsValid() {
		return "", fmt.Errorf("%w: invalid channel type %q", ErrValidation, s)
	}
	return ct, nil
}

// NotificationGroup is a named set of channels a domain alerts through.
type NotificationGroup struct {
	ID          string
	Name        string
	Description string
}

// Channel is a stored channel configuration owned by a notification group.
type Channel struct {
	ID          string
	GroupID     string
	ChannelType ChannelType
	Config      map[string]string
	IsActive    bool
}
