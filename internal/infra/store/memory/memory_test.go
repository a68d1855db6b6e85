//go:build unit

package memory_test

import (
	"context"
	"testing"
	"time"

	"escaperoom-reservations/internal/domain/reservation"
	"escaperoom-reservations/internal/domain/slot"
	"escaperoom-reservations/internal/infra"
	"escaperoom-reservations/internal/infra/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 11, 19, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T) (*memory.Store, *slot.Slot, *reservation.Reservation) {
	t.Helper()
	st := memory.NewStore()
	ctx := context.Background()

	sl, err := slot.NewSlot("ROOM-1", "2025-11-19#10", t0)
	require.NoError(t, err)
	require.NoError(t, st.Slots().Put(ctx, sl))

	res, err := reservation.NewHold("ROOM-1", "2025-11-19#10", "user-001", t0, 5*time.Minute)
	require.NoError(t, err)
	return st, sl, res
}

func TestCommitAppliesAllWrites(t *testing.T) {
	st, sl, res := seed(t)
	ctx := context.Background()

	require.NoError(t, sl.Hold(res.ID(), t0))
	err := st.Commit(ctx,
		st.Slots().ConditionalUpdate(sl),
		st.Reservations().ConditionalInsert(res),
	)
	require.NoError(t, err)

	gotSlot, err := st.Slots().Get(ctx, "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)
	assert.Equal(t, slot.StatusHold, gotSlot.Status())
	assert.True(t, gotSlot.IsOccupiedBy(res.ID()))
	assert.Equal(t, int64(2), gotSlot.Version())

	gotRes, err := st.Reservations().Get(ctx, res.ID())
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusHold, gotRes.Status())
}

func TestCommitIsAllOrNothing(t *testing.T) {
	st, sl, res := seed(t)
	ctx := context.Background()

	// A stale slot version must reject the whole commit, including the
	// otherwise valid reservation insert.
	staleSlot, err := slot.ReconstructSlot(
		sl.RoomID(), sl.SlotKey(), slot.StatusAvailable, nil, t0, t0, sl.Version()+7,
	)
	require.NoError(t, err)
	require.NoError(t, staleSlot.Hold(res.ID(), t0))

	err = st.Commit(ctx,
		st.Slots().ConditionalUpdate(staleSlot),
		st.Reservations().ConditionalInsert(res),
	)
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindVersionConflict))

	gotSlot, err := st.Slots().Get(ctx, "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)
	assert.Equal(t, slot.StatusAvailable, gotSlot.Status())
	assert.Equal(t, int64(1), gotSlot.Version())

	_, err = st.Reservations().Get(ctx, res.ID())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestCommitRejectsGuardOrderIndependently(t *testing.T) {
	st, sl, res := seed(t)
	ctx := context.Background()

	require.NoError(t, sl.Hold(res.ID(), t0))
	require.NoError(t, st.Commit(ctx,
		st.Slots().ConditionalUpdate(sl),
		st.Reservations().ConditionalInsert(res),
	))

	// Re-inserting the same reservation fails even when listed last.
	fresh, err := st.Slots().Get(ctx, "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)
	require.NoError(t, fresh.Book(t0))

	err = st.Commit(ctx,
		st.Slots().ConditionalUpdate(fresh),
		st.Reservations().ConditionalInsert(res),
	)
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindVersionConflict))

	gotSlot, err := st.Slots().Get(ctx, "ROOM-1", "2025-11-19#10")
	require.NoError(t, err)
	assert.Equal(t, slot.StatusHold, gotSlot.Status(), "slot write must not apply when a later guard fails")
}

func TestCommitRejectsForeignWrites(t *testing.T) {
	st, sl, _ := seed(t)
	other := memory.NewStore()

	err := st.Commit(context.Background(), other.Slots().ConditionalUpdate(sl))
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindStoreFailure))
}

func TestConditionalUpdateMissingRecord(t *testing.T) {
	st := memory.NewStore()

	res, err := reservation.NewHold("ROOM-1", "2025-11-19#10", "user-001", t0, 5*time.Minute)
	require.NoError(t, err)

	err = st.Commit(context.Background(), st.Reservations().ConditionalUpdate(res))
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindVersionConflict))
}

func TestGetUnknownRecords(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	_, err := st.Slots().Get(ctx, "ROOM-1", "2025-11-19#10")
	assert.True(t, infra.IsKind(err, infra.KindNotFound))

	_, err = st.Reservations().Get(ctx, uuid.New())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}
