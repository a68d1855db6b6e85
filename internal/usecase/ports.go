package usecase

import (
	"context"
	"time"

	"escaperoom-reservations/internal/domain/reservation"
	"escaperoom-reservations/internal/domain/slot"
	"escaperoom-reservations/internal/infra/store"

	"github.com/google/uuid"
)

// SlotStore is the slot record collection: keyed reads plus a conditional
// write builder guarded on the version the slot was read at. Put is the
// unconditional provisioning path and is never used during booking.
type SlotStore interface {
	Get(ctx context.Context, roomID, slotKey string) (*slot.Slot, error)
	ConditionalUpdate(s *slot.Slot) store.Write
	Put(ctx context.Context, s *slot.Slot) error
}

// ReservationStore is the reservation record collection. Get surfaces
// not-found as a distinguished outcome (infra.KindNotFound) so callers can
// map it to a validation failure.
type ReservationStore interface {
	Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	ConditionalInsert(r *reservation.Reservation) store.Write
	ConditionalUpdate(r *reservation.Reservation) store.Write
}

// Committer applies conditional writes across both collections as a single
// all-or-nothing unit.
type Committer interface {
	Commit(ctx context.Context, writes ...store.Write) error
}

// ExpiryScheduler asks an external delayed-invocation service to fire the
// expire operation at (or after) the hold deadline. Best effort: a lost
// schedule only delays automatic release.
type ExpiryScheduler interface {
	Schedule(ctx context.Context, reservationID uuid.UUID, fireAt time.Time) error
}
