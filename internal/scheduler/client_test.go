//go:build unit

package scheduler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"escaperoom-reservations/internal/pkg/config"
	"escaperoom-reservations/internal/scheduler"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientConfig(endpoint string) config.SchedulerConfig {
	return config.SchedulerConfig{
		Mode:        "http",
		Endpoint:    endpoint,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Timeout:     time.Second,
	}
}

func TestClientSchedule(t *testing.T) {
	reservationID := uuid.New()
	fireAt := time.Date(2025, 11, 19, 10, 5, 0, 0, time.UTC)

	t.Run("submits the payload once on success", func(t *testing.T) {
		var calls atomic.Int32
		var body struct {
			ReservationID string `json:"reservationId"`
			FireNotBefore int64  `json:"fireNotBefore"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		c := scheduler.NewClient(clientConfig(srv.URL))
		require.NoError(t, c.Schedule(context.Background(), reservationID, fireAt))

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, reservationID.String(), body.ReservationID)
		assert.Equal(t, fireAt.Unix(), body.FireNotBefore)
	})

	t.Run("retries on server errors and recovers", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := scheduler.NewClient(clientConfig(srv.URL))
		require.NoError(t, c.Schedule(context.Background(), reservationID, fireAt))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := scheduler.NewClient(clientConfig(srv.URL))
		err := c.Schedule(context.Background(), reservationID, fireAt)
		require.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("stops retrying when the context is cancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		cfg := clientConfig(srv.URL)
		cfg.BaseDelay = time.Minute

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- scheduler.NewClient(cfg).Schedule(ctx, reservationID, fireAt)
		}()
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("Schedule did not return after cancellation")
		}
	})
}

func TestLocalScheduler(t *testing.T) {
	t.Run("fires the bound callback after the delay", func(t *testing.T) {
		l := scheduler.NewLocal(sysClock{})
		defer l.Stop()

		fired := make(chan uuid.UUID, 1)
		l.Bind(func(_ context.Context, id uuid.UUID) error {
			fired <- id
			return nil
		})

		id := uuid.New()
		require.NoError(t, l.Schedule(context.Background(), id, time.Now().Add(10*time.Millisecond)))

		select {
		case got := <-fired:
			assert.Equal(t, id, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timer never fired")
		}
	})

	t.Run("past deadlines fire immediately", func(t *testing.T) {
		l := scheduler.NewLocal(sysClock{})
		defer l.Stop()

		fired := make(chan struct{}, 1)
		l.Bind(func(context.Context, uuid.UUID) error {
			fired <- struct{}{}
			return nil
		})

		require.NoError(t, l.Schedule(context.Background(), uuid.New(), time.Now().Add(-time.Hour)))
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("overdue timer never fired")
		}
	})

	t.Run("rejects scheduling without a callback", func(t *testing.T) {
		l := scheduler.NewLocal(sysClock{})
		defer l.Stop()
		assert.Error(t, l.Schedule(context.Background(), uuid.New(), time.Now()))
	})

	t.Run("rejects scheduling after stop", func(t *testing.T) {
		l := scheduler.NewLocal(sysClock{})
		l.Bind(func(context.Context, uuid.UUID) error { return nil })
		l.Stop()
		assert.Error(t, l.Schedule(context.Background(), uuid.New(), time.Now()))
	})
}

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now() }
