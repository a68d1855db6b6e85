package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"escaperoom-reservations/internal/pkg/clock"
	"escaperoom-reservations/internal/pkg/errs"

	"github.com/google/uuid"
)

// ExpireFunc is the callback a scheduler delivers once a hold deadline
// passes. Implementations must tolerate duplicate and late delivery.
type ExpireFunc func(ctx context.Context, reservationID uuid.UUID) error

// Local runs expiry timers in-process, standing in for the external
// delayed-invocation service in development and tests. Timers do not survive
// a restart; a hold whose timer is lost stays HOLD until cancelled, which is
// the same accepted tradeoff as a lost external trigger.
type Local struct {
	mu      sync.Mutex
	clock   clock.Clock
	expire  ExpireFunc
	timers  []*time.Timer
	stopped bool
}

func NewLocal(clk clock.Clock) *Local {
	return &Local{clock: clk}
}

// Bind sets the expire callback. Separate from construction because the
// coordinator and the scheduler reference each other.
func (l *Local) Bind(fn ExpireFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expire = fn
}

func (l *Local) Schedule(_ context.Context, reservationID uuid.UUID, fireAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return errs.New("local scheduler is stopped")
	}
	if l.expire == nil {
		return errs.New("local scheduler has no expire callback bound")
	}

	delay := fireAt.Sub(l.clock.Now())
	if delay < 0 {
		delay = 0
	}

	timer := time.AfterFunc(delay, func() {
		l.fire(reservationID)
	})
	l.timers = append(l.timers, timer)
	return nil
}

func (l *Local) fire(reservationID uuid.UUID) {
	l.mu.Lock()
	fn := l.expire
	stopped := l.stopped
	l.mu.Unlock()
	if stopped || fn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fn(ctx, reservationID); err != nil {
		slog.Warn("local expiry delivery failed",
			"reservation_id", reservationID.String(),
			"error", err.Error())
	}
}

// Stop cancels pending timers. Fired callbacks already in flight complete.
func (l *Local) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	for _, t := range l.timers {
		t.Stop()
	}
	l.timers = nil
}
