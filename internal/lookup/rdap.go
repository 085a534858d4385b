package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

const (
	DefaultRDAPBaseURL = "https://rdap.org"
	rdapSource         = "rdap"
	availableToken     = "available"
)

type rdapEvent struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
}

type rdapEntity struct {
	Roles      []string          `json:"roles"`
	VCardArray []json.RawMessage `json:"vcardArray"`
	Entities   []rdapEntity      `json:"entities"`
}

// rdapError is the error response body of RFC 9083 section 6.
type rdapError struct {
	ErrorCode int `json:"errorCode"`
}

type rdapDomain struct {
	LDHName  string       `json:"ldhName"`
	Status   []string     `json:"status"`
	Events   []rdapEvent  `json:"events"`
	Entities []rdapEntity `json:"entities"`
}

// RDAPClient resolves domains against an RDAP service. A 404 answer from a
// registry means the name is not registered and yields an "available"
// snapshot. A bare 404 from the bootstrap service itself (no redirect, no
// RDAP error body) usually means the TLD is unknown and is a lookup failure.
type RDAPClient struct {
	client  *resty.Client
	baseURL string
	now     func() time.Time
}

func NewRDAPClient(baseURL string, timeout time.Duration) *RDAPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultRDAPBaseURL
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/rdap+json, application/json")

	return &RDAPClient{client: client, baseURL: baseURL, now: time.Now}
}

func (c *RDAPClient) Lookup(ctx context.Context, name string) (*domain.LookupSnapshot, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("%w: empty domain name", ErrLookupFailed)
	}

	requestURL := c.baseURL + "/domain/" + url.PathEscape(name)
	response, err := c.client.R().
		SetContext(ctx).
		Get(requestURL)
	if err != nil {
		// The request URL is dropped from the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLookupFailed, name, err)
	}

	fetchedAt := c.now().UTC()

	switch response.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		if !registryNotFound(response, requestURL) {
			return nil, fmt.Errorf("%w: %s: no rdap service answered for this name", ErrLookupFailed, name)
		}
		return &domain.LookupSnapshot{
			StatusTokens: []string{availableToken},
			Source:       rdapSource,
			FetchedAt:    fetchedAt,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s: unexpected rdap status %d", ErrLookupFailed, name, response.StatusCode())
	}

	var doc rdapDomain
	if err := json.Unmarshal(response.Body(), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: decode rdap response: %v", ErrLookupFailed, name, err)
	}

	return &domain.LookupSnapshot{
		Registrar:      registrarName(doc.Entities),
		ExpirationDate: expirationDate(doc.Events),
		StatusTokens:   doc.Status,
		Source:         rdapSource,
		FetchedAt:      fetchedAt,
	}, nil
}

// registryNotFound reports whether a 404 came from an authoritative RDAP
// server: either the bootstrap service redirected there, or the body is an
// RDAP error object.
func registryNotFound(response *resty.Response, requestURL string) bool {
	if raw := response.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		if raw.Request.URL.String() != requestURL {
			return true
		}
	}

	var body rdapError
	if err := json.Unmarshal(response.Body(), &body); err != nil {
		return false
	}
	return body.ErrorCode == http.StatusNotFound
}

func expirationDate(events []rdapEvent) *time.Time {
	for _, ev := range events {
		if !strings.EqualFold(ev.EventAction, "expiration") {
			continue
		}
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(ev.EventDate))
		if err != nil {
			continue
		}
		t = t.UTC()
		return &t
	}
	return nil
}

func registrarName(entities []rdapEntity) string {
	for _, e := range entities {
		for _, role := range e.Roles {
			if strings.EqualFold(role, "registrar") {
				if fn := vcardFN(e.VCardArray); fn != "" {
					return fn
				}
			}
		}
		if fn := registrarName(e.Entities); fn != "" {
			return fn
		}
	}
	return ""
}

// vcardFN extracts the "fn" property from a jCard ["vcard", [[name, params, type, value]...]].
func vcardFN(vcard []json.RawMessage) string {
	if len(vcard) < 2 {
		return ""
	}

	var props [][]json.RawMessage
	if err := json.Unmarshal(vcard[1], &props); err != nil {
		return ""
	}

	for _, prop := range props {
		if len(prop) < 4 {
			continue
		}
		var name string
		if err := json.Unmarshal(prop[0], &name); err != nil || name != "fn" {
			continue
		}
		var value string
		if err := json.Unmarshal(prop[3], &value); err != nil {
			continue
		}
		return strings.TrimSpace(value)
	}
	return ""
}
