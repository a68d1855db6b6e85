package components

import (
	"escaperoom-reservations/internal/handler"
	"escaperoom-reservations/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewExpiryHandler,
		api.NewSlotHandler,
	),
	fx.Invoke(handler.NewRouter),
)
