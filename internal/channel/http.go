package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

const (
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "domain-alerts/1.0"
	maxErrorBodyLen  = 512
)

// NewHTTPClient returns a resty client with a bounded timeout and retries
// disabled; a failed alert is retried by the next scheduled run.
func NewHTTPClient(timeout time.Duration, userAgent string) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("User-Agent", userAgent)
	return client
}

func ensureClient(client *resty.Client) *resty.Client {
	if client == nil {
		return NewHTTPClient(DefaultTimeout, "")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(DefaultTimeout)
	}
	client.SetRetryCount(0)
	return client
}

// postJSON posts body and succeeds only when the response status equals
// wantStatus.
func postJSON(
	ctx context.Context,
	client *resty.Client,
	channelType domain.ChannelType,
	endpoint string,
	body any,
	headers map[string]string,
	wantStatus int,
) (*resty.Response, error) {
	req := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	response, err := req.Post(endpoint)
	if err != nil {
		return nil, &Error{
			Channel:   channelType,
			Message:   "request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     stripURL(err),
		}
	}
	if response == nil {
		return nil, &Error{
			Channel:   channelType,
			Message:   "empty response",
			Transient: true,
		}
	}

	if response.StatusCode() != wantStatus {
		return response, &Error{
			Channel:    channelType,
			StatusCode: response.StatusCode(),
			Message:    unexpectedStatusMessage(response.StatusCode(), wantStatus, response.String()),
			Transient:  isTransientHTTPStatus(response.StatusCode()),
		}
	}

	return response, nil
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func unexpectedStatusMessage(got, want int, body string) string {
	base := fmt.Sprintf("unexpected status %d, want %d", got, want)
	body = strings.TrimSpace(sanitizeErrorBody(body))
	if body == "" {
		return base
	}
	if len(body) > maxErrorBodyLen {
		body = truncateUTF8(body, maxErrorBodyLen) + "..."
	}
	return fmt.Sprintf("%s: %s", base, body)
}

// sanitizeErrorBody makes a provider response safe to store in a text
// column: invalid UTF-8 is replaced and NUL bytes are dropped.
func sanitizeErrorBody(body string) string {
	body = strings.ToValidUTF8(body, "\uFFFD")
	return strings.ReplaceAll(body, "\x00", "")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
