package components

import (
	"escaperoom-reservations/internal/pkg/clock"
	"escaperoom-reservations/internal/pkg/config"
	"escaperoom-reservations/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewSystemClock,
		func(cfg config.Config) config.BookingConfig {
			return cfg.Booking
		},
		usecase.NewBookingCommands,
		usecase.NewSlotAdmin,
	),
)
