package bootstrap

import (
	"escaperoom-reservations/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	SchedulerModule,
	components.StoreModule,
	components.UseCaseModule,
	components.HandlerModule,
)
