package slot

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingField  = errors.New("slot is missing a required field")
	ErrNotAvailable  = errors.New("slot is not available")
	ErrNotOccupied   = errors.New("slot is not occupied")
	ErrWrongOccupant = errors.New("slot is occupied by a different reservation")
	ErrInvalidStatus = errors.New("invalid slot status")
)

// Slot is one bookable (room, time-bucket) unit. The slot record is the single
// source of truth for occupancy: occupyingReservationID is non-nil exactly
// when status is HOLD or BOOKED.
//
// version is an opaque compare-and-swap token advanced by the store on every
// committed write; updatedAt is audit data only and plays no part in
// concurrency control.
type Slot struct {
	roomID                 string
	slotKey                string
	status                 Status
	occupyingReservationID *uuid.UUID
	createdAt              time.Time
	updatedAt              time.Time
	version                int64
}

// NewSlot provisions a fresh AVAILABLE slot. Used only by ingestion/admin
// paths, never during booking.
func NewSlot(roomID, slotKey string, now time.Time) (*Slot, error) {
	if roomID == "" || slotKey == "" {
		return nil, ErrMissingField
	}
	return &Slot{
		roomID:    roomID,
		slotKey:   slotKey,
		status:    StatusAvailable,
		createdAt: now,
		updatedAt: now,
		version:   1,
	}, nil
}

func ReconstructSlot(
	roomID, slotKey string,
	status Status,
	occupyingReservationID *uuid.UUID,
	createdAt, updatedAt time.Time,
	version int64,
) (*Slot, error) {
	if roomID == "" || slotKey == "" {
		return nil, ErrMissingField
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &Slot{
		roomID:                 roomID,
		slotKey:                slotKey,
		status:                 status,
		occupyingReservationID: occupyingReservationID,
		createdAt:              createdAt,
		updatedAt:              updatedAt,
		version:                version,
	}, nil
}

func (s *Slot) RoomID() string  { return s.roomID }
func (s *Slot) SlotKey() string { return s.slotKey }
func (s *Slot) Status() Status  { return s.status }
func (s *Slot) OccupyingReservationID() *uuid.UUID {
	return s.occupyingReservationID
}
func (s *Slot) CreatedAt() time.Time { return s.createdAt }
func (s *Slot) UpdatedAt() time.Time { return s.updatedAt }

// Version returns the CAS token read from the store. Conditional writes guard
// on this value; the store bumps it on commit.
func (s *Slot) Version() int64 { return s.version }

func (s *Slot) IsAvailable() bool {
	return s.status == StatusAvailable && s.occupyingReservationID == nil
}

func (s *Slot) IsOccupiedBy(reservationID uuid.UUID) bool {
	return s.occupyingReservationID != nil && *s.occupyingReservationID == reservationID
}

// Hold claims the slot for a reservation. Only an AVAILABLE, unoccupied slot
// can be held.
func (s *Slot) Hold(reservationID uuid.UUID, now time.Time) error {
	if !s.IsAvailable() {
		return ErrNotAvailable
	}
	id := reservationID
	s.status = StatusHold
	s.occupyingReservationID = &id
	s.updatedAt = now
	return nil
}

// Book converts a held slot into a booked one; the occupant is unchanged.
func (s *Slot) Book(now time.Time) error {
	if s.status != StatusHold {
		return ErrInvalidStatus
	}
	if s.occupyingReservationID == nil {
		return ErrNotOccupied
	}
	s.status = StatusBooked
	s.updatedAt = now
	return nil
}

// Release returns a held or booked slot to AVAILABLE and clears the occupant.
func (s *Slot) Release(now time.Time) error {
	if s.status != StatusHold && s.status != StatusBooked {
		return ErrInvalidStatus
	}
	s.status = StatusAvailable
	s.occupyingReservationID = nil
	s.updatedAt = now
	return nil
}
