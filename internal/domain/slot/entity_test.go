//go:build unit

package slot_test

import (
	"testing"
	"time"

	"escaperoom-reservations/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 11, 19, 10, 0, 0, 0, time.UTC)

func newAvailableSlot(t *testing.T) *slot.Slot {
	t.Helper()
	sl, err := slot.NewSlot("ROOM-1", "2025-11-19#10", t0)
	require.NoError(t, err)
	return sl
}

func TestNewSlot(t *testing.T) {
	t.Run("starts available and unoccupied", func(t *testing.T) {
		sl := newAvailableSlot(t)

		assert.Equal(t, slot.StatusAvailable, sl.Status())
		assert.Nil(t, sl.OccupyingReservationID())
		assert.True(t, sl.IsAvailable())
		assert.Equal(t, int64(1), sl.Version())
		assert.Equal(t, t0, sl.CreatedAt())
		assert.Equal(t, t0, sl.UpdatedAt())
	})

	t.Run("missing fields", func(t *testing.T) {
		cases := []struct {
			name    string
			roomID  string
			slotKey string
		}{
			{name: "empty room", roomID: "", slotKey: "2025-11-19#10"},
			{name: "empty slot key", roomID: "ROOM-1", slotKey: ""},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := slot.NewSlot(tc.roomID, tc.slotKey, t0)
				assert.ErrorIs(t, err, slot.ErrMissingField)
			})
		}
	})
}

func TestSlotHold(t *testing.T) {
	t.Run("claims an available slot", func(t *testing.T) {
		sl := newAvailableSlot(t)
		resID := uuid.New()
		later := t0.Add(time.Minute)

		require.NoError(t, sl.Hold(resID, later))

		assert.Equal(t, slot.StatusHold, sl.Status())
		assert.True(t, sl.IsOccupiedBy(resID))
		assert.False(t, sl.IsAvailable())
		assert.Equal(t, later, sl.UpdatedAt())
		// Version only moves when the store commits.
		assert.Equal(t, int64(1), sl.Version())
	})

	t.Run("rejects a second hold", func(t *testing.T) {
		sl := newAvailableSlot(t)
		require.NoError(t, sl.Hold(uuid.New(), t0))

		err := sl.Hold(uuid.New(), t0)
		assert.ErrorIs(t, err, slot.ErrNotAvailable)
	})
}

func TestSlotBook(t *testing.T) {
	t.Run("books a held slot keeping the occupant", func(t *testing.T) {
		sl := newAvailableSlot(t)
		resID := uuid.New()
		require.NoError(t, sl.Hold(resID, t0))

		require.NoError(t, sl.Book(t0.Add(time.Minute)))

		assert.Equal(t, slot.StatusBooked, sl.Status())
		assert.True(t, sl.IsOccupiedBy(resID))
	})

	t.Run("rejects booking an available slot", func(t *testing.T) {
		sl := newAvailableSlot(t)
		assert.ErrorIs(t, sl.Book(t0), slot.ErrInvalidStatus)
	})
}

func TestSlotRelease(t *testing.T) {
	t.Run("releases a held slot", func(t *testing.T) {
		sl := newAvailableSlot(t)
		require.NoError(t, sl.Hold(uuid.New(), t0))

		require.NoError(t, sl.Release(t0.Add(time.Minute)))

		assert.Equal(t, slot.StatusAvailable, sl.Status())
		assert.Nil(t, sl.OccupyingReservationID())
		assert.True(t, sl.IsAvailable())
	})

	t.Run("releases a booked slot", func(t *testing.T) {
		sl := newAvailableSlot(t)
		require.NoError(t, sl.Hold(uuid.New(), t0))
		require.NoError(t, sl.Book(t0))

		require.NoError(t, sl.Release(t0))
		assert.True(t, sl.IsAvailable())
	})

	t.Run("rejects releasing an available slot", func(t *testing.T) {
		sl := newAvailableSlot(t)
		assert.ErrorIs(t, sl.Release(t0), slot.ErrInvalidStatus)
	})
}

func TestParseSlotStatus(t *testing.T) {
	cases := []struct {
		raw     string
		want    slot.Status
		wantErr bool
	}{
		{raw: "AVAILABLE", want: slot.StatusAvailable},
		{raw: "HOLD", want: slot.StatusHold},
		{raw: "BOOKED", want: slot.StatusBooked},
		{raw: "available", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "RESERVED", wantErr: true},
	}
	for _, tc := range cases {
		t.Run("parse "+tc.raw, func(t *testing.T) {
			got, err := slot.ParseStatus(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
