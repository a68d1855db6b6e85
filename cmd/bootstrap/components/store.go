package components

import (
	"context"

	"escaperoom-reservations/internal/infra/store/postgres"
	"escaperoom-reservations/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		fx.Annotate(
			postgres.NewSlotStore,
			fx.As(new(usecase.SlotStore)),
		),
		fx.Annotate(
			postgres.NewReservationStore,
			fx.As(new(usecase.ReservationStore)),
		),
		fx.Annotate(
			postgres.NewCommitter,
			fx.As(new(usecase.Committer)),
		),
	),
	fx.Invoke(
		EnsureSchema,
	),
)

func EnsureSchema(pool *pgxpool.Pool) error {
	return postgres.EnsureSchema(context.Background(), pool)
}
