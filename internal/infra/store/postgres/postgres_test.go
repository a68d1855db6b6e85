//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"escaperoom-reservations/internal/domain/reservation"
	"escaperoom-reservations/internal/domain/slot"
	"escaperoom-reservations/internal/infra"
	"escaperoom-reservations/internal/infra/store/postgres"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "test"
	testPassword = "testpass"
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
	containerDSN  string
)

var t0 = time.Date(2025, 11, 19, 10, 0, 0, 0, time.UTC)

func startPostgres(t *testing.T) {
	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=256m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "synchronous_commit=off",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					testUser, testPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
		}

		var err error
		container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err, "failed to start the postgres container")

		host, err := container.Host(ctx)
		require.NoError(t, err)
		mapped, err := container.MappedPort(ctx, "5432/tcp")
		require.NoError(t, err)
		containerDSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%%s?sslmode=disable",
			testUser, testPassword, host, mapped.Port())
	})
}

// newPool creates a fresh database per test so tests stay independent.
func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	startPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := "testdb_" + uuid.New().String()[:8]
	adminPool, err := pgxpool.New(ctx, fmt.Sprintf(containerDSN, "postgres"))
	require.NoError(t, err)
	defer adminPool.Close()
	_, err = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, fmt.Sprintf(containerDSN, dbName))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	// EnsureSchema must be safe to run against an initialized database.
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	return pool
}

func seedSlot(t *testing.T, slots *postgres.SlotStore) *slot.Slot {
	t.Helper()
	sl, err := slot.NewSlot("ROOM-1", "2025-11-19#10", t0)
	require.NoError(t, err)
	require.NoError(t, slots.Put(context.Background(), sl))
	return sl
}

func TestSlotStoreRoundTrip(t *testing.T) {
	pool := newPool(t)
	slots := postgres.NewSlotStore(pool)
	seedSlot(t, slots)

	got, err := slots.Get(context.Background(), "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)
	assert.Equal(t, "ROOM-1", got.RoomID())
	assert.Equal(t, "2025-11-19#10", got.SlotKey())
	assert.Equal(t, slot.StatusAvailable, got.Status())
	assert.Nil(t, got.OccupyingReservationID())
	assert.Equal(t, int64(1), got.Version())

	_, err = slots.Get(context.Background(), "ROOM-1", "2025-11-19#23")
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestCommitHoldPair(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	slots := postgres.NewSlotStore(pool)
	reservations := postgres.NewReservationStore(pool)
	committer := postgres.NewCommitter(pool)

	sl := seedSlot(t, slots)
	res, err := reservation.NewHold("ROOM-1", "2025-11-19#10", "user-001", t0, 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, sl.Hold(res.ID(), t0))

	require.NoError(t, committer.Commit(ctx,
		slots.ConditionalUpdate(sl),
		reservations.ConditionalInsert(res),
	))

	gotSlot, err := slots.Get(ctx, "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)
	assert.Equal(t, slot.StatusHold, gotSlot.Status())
	assert.True(t, gotSlot.IsOccupiedBy(res.ID()))
	assert.Equal(t, int64(2), gotSlot.Version(), "commit must advance the version token")

	gotRes, err := reservations.Get(ctx, res.ID())
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusHold, gotRes.Status())
	assert.Equal(t, res.HoldExpiresAt().UTC(), gotRes.HoldExpiresAt().UTC())
}

func TestCommitStaleVersionIsAtomic(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	slots := postgres.NewSlotStore(pool)
	reservations := postgres.NewReservationStore(pool)
	committer := postgres.NewCommitter(pool)

	seedSlot(t, slots)

	// Two readers observe version 1; the first to commit wins.
	first, err := slots.Get(ctx, "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)
	second, err := slots.Get(ctx, "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)

	resA, err := reservation.NewHold("ROOM-1", "2025-11-19#10", "user-001", t0, 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, first.Hold(resA.ID(), t0))
	require.NoError(t, committer.Commit(ctx,
		slots.ConditionalUpdate(first),
		reservations.ConditionalInsert(resA),
	))

	resB, err := reservation.NewHold("ROOM-1", "2025-11-19#10", "user-002", t0, 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, second.Hold(resB.ID(), t0))
	err = committer.Commit(ctx,
		slots.ConditionalUpdate(second),
		reservations.ConditionalInsert(resB),
	)
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindVersionConflict))

	// The loser's reservation insert must have been rolled back with the
	// rejected slot write.
	_, err = reservations.Get(ctx, resB.ID())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))

	gotSlot, err := slots.Get(ctx, "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)
	assert.True(t, gotSlot.IsOccupiedBy(resA.ID()))
}

func TestCommitDuplicateInsert(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	reservations := postgres.NewReservationStore(pool)
	committer := postgres.NewCommitter(pool)

	res, err := reservation.NewHold("ROOM-1", "2025-11-19#10", "user-001", t0, 5*time.Minute)
	require.NoError(t, err)

	require.NoError(t, committer.Commit(ctx, reservations.ConditionalInsert(res)))

	err = committer.Commit(ctx, reservations.ConditionalInsert(res))
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindVersionConflict))
}

func TestConfirmedReservationStoresNullDeadline(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	reservations := postgres.NewReservationStore(pool)
	committer := postgres.NewCommitter(pool)

	res, err := reservation.NewHold("ROOM-1", "2025-11-19#10", "user-001", t0, 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, committer.Commit(ctx, reservations.ConditionalInsert(res)))

	stored, err := reservations.Get(ctx, res.ID())
	require.NoError(t, err)
	require.NoError(t, stored.Confirm(t0.Add(time.Minute)))
	require.NoError(t, committer.Commit(ctx, reservations.ConditionalUpdate(stored)))

	got, err := reservations.Get(ctx, res.ID())
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, got.Status())
	assert.True(t, got.HoldExpiresAt().IsZero())
	assert.Equal(t, int64(2), got.Version())
}
