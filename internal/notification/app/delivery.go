package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/internal/notification/repository"
	"subtitle_platform_service/pkg/logger"

	"go.uber.org/zap"
)

const maxRedirects = 10

var errTooManyRedirects = errors.New("stopped after too many redirects")

// DeliveryUseCase performs one webhook delivery attempt and records the
// outcome on the ledger. No automatic retry: a failed attempt is a terminal,
// audited state.
type DeliveryUseCase interface {
	DoHTTPPost(ctx context.Context, teamID uint, webhookURL string, data map[string]interface{}) error
}

type deliveryUseCase struct {
	repo   repository.NotificationRepository
	client *http.Client
	now    func() time.Time
}

// NewDeliveryUseCase create a DeliveryUseCase with a bounded POST timeout
func NewDeliveryUseCase(repo repository.NotificationRepository, timeout time.Duration) DeliveryUseCase {
	return &deliveryUseCase{
		repo: repo,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		now: time.Now,
	}
}

// DoHTTPPost persists the ledger row, reserves the per-team number, POSTs the
// payload merged with that number and records the classified outcome. Errors
// returned here are storage errors only; delivery failures are recorded, not
// propagated.
func (d *deliveryUseCase) DoHTTPPost(ctx context.Context, teamID uint, webhookURL string, data map[string]interface{}) error {
	rawData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	notification := &domain.TeamNotification{
		TeamID:    teamID,
		URL:       webhookURL,
		Data:      string(rawData),
		Timestamp: d.now(),
	}
	if err := d.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if err := d.repo.AssignNumber(ctx, notification); err != nil {
		return fmt.Errorf("assign notification number: %w", err)
	}

	payload := make(map[string]interface{}, len(data)+1)
	for key, value := range data {
		payload[key] = value
	}
	payload["number"] = *notification.Number
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		message := classifyNetworkError(err)
		notification.ErrorMessage = &message
		logger.Log.Warn("webhook delivery failed",
			zap.Uint("team_id", teamID), zap.Int("number", *notification.Number),
			zap.String("error", message))
		return d.repo.RecordOutcome(ctx, notification)
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	notification.ResponseStatus = &status
	if status < 200 || status >= 300 {
		message := fmt.Sprintf("Response status: %d", status)
		notification.ErrorMessage = &message
	}
	return d.repo.RecordOutcome(ctx, notification)
}

// classifyNetworkError maps a transport failure onto the recorded message set
func classifyNetworkError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if errors.Is(urlErr.Err, errTooManyRedirects) {
			return domain.ErrMsgTooManyRedirects
		}
		if urlErr.Timeout() {
			return domain.ErrMsgTimeout
		}
	}
	return domain.ErrMsgConnection
}
