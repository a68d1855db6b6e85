package bootstrap

import (
	"context"

	"escaperoom-reservations/internal/pkg/clock"
	"escaperoom-reservations/internal/pkg/config"
	"escaperoom-reservations/internal/scheduler"
	"escaperoom-reservations/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		NewExpiryScheduler,
	),
	fx.Invoke(
		BindLocalExpiry,
	),
)

// NewExpiryScheduler selects the expiry trigger backend. "http" submits to an
// external delayed-invocation service that calls back on /internal/expire-hold;
// anything else runs in-process timers. The *scheduler.Local return is nil in
// http mode so BindLocalExpiry can tell the modes apart.
func NewExpiryScheduler(lc fx.Lifecycle, cfg config.Config, clk clock.Clock) (usecase.ExpiryScheduler, *scheduler.Local) {
	if cfg.Scheduler.Mode == "http" {
		return scheduler.NewClient(cfg.Scheduler), nil
	}

	local := scheduler.NewLocal(clk)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			local.Stop()
			return nil
		},
	})
	return local, local
}

// BindLocalExpiry closes the loop for the in-process scheduler: fired timers
// deliver straight into the booking coordinator instead of going over HTTP.
func BindLocalExpiry(local *scheduler.Local, booking usecase.BookingCommands) {
	if local == nil {
		return
	}
	local.Bind(func(ctx context.Context, reservationID uuid.UUID) error {
		_, err := booking.ExpireHold(ctx, reservationID)
		return err
	})
}
