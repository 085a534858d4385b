package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// ErrInvalidConfig marks a channel whose stored configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid channel config")

// Error classifies channel send failures as transient/permanent.
type Error struct {
	Channel    domain.ChannelType
	StatusCode int
	Message    string
	Transient  bool
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 4)
	if e.Channel != "" {
		parts = append(parts, fmt.Sprintf("%s channel error", e.Channel))
	} else {
		parts = append(parts, "channel error")
	}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsTransient reports whether a failed send may succeed on a later run.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrInvalidConfig) {
		return false
	}

	var channelErr *Error
	if errors.As(err, &channelErr) {
		return channelErr.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// FailureReason returns a short metrics label for a send error.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case IsTransient(err):
		return "transient_error"
	default:
		return "permanent_error"
	}
}

func invalidConfig(channelType domain.ChannelType, format string, args ...any) error {
	return &Error{
		Channel: channelType,
		Message: fmt.Sprintf(format, args...),
		Cause:   ErrInvalidConfig,
	}
}

// stripURL drops the request URL from transport errors; webhook URLs and bot
// tokens are credentials and must not reach logs or the ledger.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
