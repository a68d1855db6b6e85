package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingField      = errors.New("reservation is missing a required field")
	ErrInvalidStatus     = errors.New("invalid reservation status")
	ErrInvalidTransition = errors.New("illegal reservation status transition")
)

// Reservation is a user's claim on one slot. Born as a HOLD with a fixed
// deadline; ends CONFIRMED, CANCELLED, or EXPIRED. Identity and target
// (id, roomID, slotKey, userID) are immutable after creation.
type Reservation struct {
	id            uuid.UUID
	roomID        string
	slotKey       string
	userID        string
	status        Status
	createdAt     time.Time
	holdExpiresAt time.Time
	updatedAt     time.Time
	version       int64
}

// NewHold creates a fresh HOLD reservation with deadline now+ttl.
func NewHold(roomID, slotKey, userID string, now time.Time, ttl time.Duration) (*Reservation, error) {
	if roomID == "" || slotKey == "" || userID == "" {
		return nil, ErrMissingField
	}
	return &Reservation{
		id:            uuid.New(),
		roomID:        roomID,
		slotKey:       slotKey,
		userID:        userID,
		status:        StatusHold,
		createdAt:     now,
		holdExpiresAt: now.Add(ttl),
		updatedAt:     now,
		version:       1,
	}, nil
}

func ReconstructReservation(
	id uuid.UUID,
	roomID, slotKey, userID string,
	status Status,
	createdAt, holdExpiresAt, updatedAt time.Time,
	version int64,
) (*Reservation, error) {
	if roomID == "" || slotKey == "" || userID == "" {
		return nil, ErrMissingField
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &Reservation{
		id:            id,
		roomID:        roomID,
		slotKey:       slotKey,
		userID:        userID,
		status:        status,
		createdAt:     createdAt,
		holdExpiresAt: holdExpiresAt,
		updatedAt:     updatedAt,
		version:       version,
	}, nil
}

func (r *Reservation) ID() uuid.UUID        { return r.id }
func (r *Reservation) RoomID() string       { return r.roomID }
func (r *Reservation) SlotKey() string      { return r.slotKey }
func (r *Reservation) UserID() string       { return r.userID }
func (r *Reservation) Status() Status       { return r.status }
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }

// HoldExpiresAt is meaningful only while status is HOLD; it is zero once the
// reservation is confirmed.
func (r *Reservation) HoldExpiresAt() time.Time { return r.holdExpiresAt }

// Version returns the CAS token read from the store. Conditional writes guard
// on this value; the store bumps it on commit.
func (r *Reservation) Version() int64 { return r.version }

func (r *Reservation) IsHold() bool { return r.status == StatusHold }

// HoldDeadlinePassed reports whether the hold deadline is at or before now.
func (r *Reservation) HoldDeadlinePassed(now time.Time) bool {
	return r.status == StatusHold && !r.holdExpiresAt.After(now)
}

// Confirm moves HOLD -> CONFIRMED and clears the hold deadline.
func (r *Reservation) Confirm(now time.Time) error {
	if r.status != StatusHold {
		return ErrInvalidTransition
	}
	r.status = StatusConfirmed
	r.holdExpiresAt = time.Time{}
	r.updatedAt = now
	return nil
}

// Cancel moves HOLD or CONFIRMED -> CANCELLED.
func (r *Reservation) Cancel(now time.Time) error {
	if r.status != StatusHold && r.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	r.status = StatusCancelled
	r.updatedAt = now
	return nil
}

// Expire moves HOLD -> EXPIRED. Deadline enforcement is the coordinator's
// concern; the entity only guards the transition itself.
func (r *Reservation) Expire(now time.Time) error {
	if r.status != StatusHold {
		return ErrInvalidTransition
	}
	r.status = StatusExpired
	r.updatedAt = now
	return nil
}
