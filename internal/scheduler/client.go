// Package scheduler submits hold-expiry callbacks to a delayed-invocation
// service. Submission is best effort: the coordinator treats a lost schedule
// as degraded promptness of automatic release, never as a failed create.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"escaperoom-reservations/internal/pkg/config"
	"escaperoom-reservations/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 200 * time.Millisecond
)

// Client submits schedule requests over HTTP with bounded retries and
// exponential backoff. The remote service is expected to POST the payload
// back to the expire-hold endpoint at (or after) fireNotBefore.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	maxAttempts int
	baseDelay   time.Duration
}

func NewClient(cfg config.SchedulerConfig) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		endpoint:    cfg.Endpoint,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

type scheduleRequest struct {
	ReservationID string `json:"reservationId"`
	FireNotBefore int64  `json:"fireNotBefore"`
}

func (c *Client) Schedule(ctx context.Context, reservationID uuid.UUID, fireAt time.Time) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.submit(ctx, reservationID, fireAt)
		if lastErr == nil {
			slog.Info("hold expiry scheduled",
				"reservation_id", reservationID.String(),
				"fire_not_before", fireAt)
			return nil
		}
		if attempt < c.maxAttempts {
			delay := c.baseDelay << (attempt - 1)
			slog.Warn("expiry schedule submission failed, retrying",
				"reservation_id", reservationID.String(),
				"attempt", attempt,
				"max_attempts", c.maxAttempts,
				"retry_in", delay,
				"error", lastErr.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return errs.Wrap(lastErr, fmt.Sprintf("expiry scheduling failed after %d attempts", c.maxAttempts))
}

func (c *Client) submit(ctx context.Context, reservationID uuid.UUID, fireAt time.Time) error {
	payload, err := json.Marshal(scheduleRequest{
		ReservationID: reservationID.String(),
		FireNotBefore: fireAt.Unix(),
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode schedule request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "failed to build schedule request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(err, "schedule submission failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errs.New(fmt.Sprintf("scheduler rejected submission with status %d", resp.StatusCode))
	}
	return nil
}
