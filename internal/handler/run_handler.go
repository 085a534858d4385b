package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"github.com/kursadbilgin/domain-alerts/internal/service"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500
)

// RunController triggers batch runs and reports the last one.
type RunController interface {
	Trigger() error
	Running() bool
	LastSummary() (service.Summary, bool)
}

type DomainReader interface {
	GetByID(ctx context.Context, id string) (*domain.Domain, error)
}

type AlertHistory interface {
	ListByDomain(ctx context.Context, domainID string, limit int) ([]domain.AlertAttempt, error)
}

type RunHandler struct {
	runs    RunController
	domains DomainReader
	history AlertHistory
}

func NewRunHandler(runs RunController, domains DomainReader, history AlertHistory) (*RunHandler, error) {
	if runs == nil {
		return nil, fmt.Errorf("run controller is required")
	}
	if domains == nil {
		return nil, fmt.Errorf("domain reader is required")
	}
	if history == nil {
		return nil, fmt.Errorf("alert history is required")
	}
	return &RunHandler{runs: runs, domains: domains, history: history}, nil
}

func RegisterRunRoutes(router fiber.Router, runs RunController, domains DomainReader, history AlertHistory) error {
	h, err := NewRunHandler(runs, domains, history)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/runs", h.TriggerRun)
	v1.Get("/runs/last", h.GetLastRun)
	v1.Get("/domains/:id/alerts", h.ListDomainAlerts)

	return nil
}

type alertAttemptResponse struct {
	ID               string    `json:"id"`
	NotificationType string    `json:"notificationType"`
	Channel          string    `json:"channel"`
	Status           string    `json:"status"`
	Message          string    `json:"message"`
	ErrorMessage     *string   `json:"errorMessage,omitempty"`
	SentAt           time.Time `json:"sentAt"`
}

type domainAlertsResponse struct {
	DomainID string                 `json:"domainId"`
	Domain   string                 `json:"domain"`
	Status   string                 `json:"status"`
	Data     []alertAttemptResponse `json:"data"`
}

func (h *RunHandler) TriggerRun(c *fiber.Ctx) error {
	if err := h.runs.Trigger(); err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
	})
}

func (h *RunHandler) GetLastRun(c *fiber.Ctx) error {
	summary, ok := h.runs.LastSummary()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no batch run has finished yet")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"running": h.runs.Running(),
		"summary": summary,
	})
}

func (h *RunHandler) ListDomainAlerts(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "domain id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return toHTTPError(fmt.Errorf("%w: domain id must be a uuid", domain.ErrValidation))
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		return toHTTPError(err)
	}

	dom, err := h.domains.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	attempts, err := h.history.ListByDomain(c.Context(), id, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(domainAlertsResponse{
		DomainID: dom.ID,
		Domain:   dom.Name,
		Status:   dom.Status.String(),
		Data:     toAlertAttemptResponses(attempts),
	})
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultAlertLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxAlertLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxAlertLimit)
	}
	return limit, nil
}

func toAlertAttemptResponses(attempts []domain.AlertAttempt) []alertAttemptResponse {
	responses := make([]alertAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		responses = append(responses, alertAttemptResponse{
			ID:               a.ID,
			NotificationType: a.NotificationType.String(),
			Channel:          a.ChannelType.String(),
			Status:           a.Status.String(),
			Message:          a.Message,
			ErrorMessage:     a.ErrorMessage,
			SentAt:           a.SentAt,
		})
	}
	return responses
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
