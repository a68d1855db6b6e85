// Package memory is an in-process realization of the transactional store
// contract, with the same conditional-write and all-or-nothing commit
// semantics as the postgres backend. It backs unit tests and local
// development without a database.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"escaperoom-reservations/internal/domain/reservation"
	"escaperoom-reservations/internal/domain/slot"
	"escaperoom-reservations/internal/infra"
	"escaperoom-reservations/internal/infra/store"

	"github.com/google/uuid"
)

type slotRow struct {
	roomID    string
	slotKey   string
	status    slot.Status
	occupying *uuid.UUID
	createdAt time.Time
	updatedAt time.Time
	version   int64
}

type reservationRow struct {
	id            uuid.UUID
	roomID        string
	slotKey       string
	userID        string
	status        reservation.Status
	createdAt     time.Time
	holdExpiresAt time.Time
	updatedAt     time.Time
	version       int64
}

// Store holds both record collections behind one mutex so a commit observes
// and mutates a consistent snapshot. The slot and reservation stores are
// views over this shared core; the Store itself is the committer.
type Store struct {
	mu           sync.Mutex
	slots        map[string]slotRow
	reservations map[uuid.UUID]reservationRow
}

func NewStore() *Store {
	return &Store{
		slots:        make(map[string]slotRow),
		reservations: make(map[uuid.UUID]reservationRow),
	}
}

func (s *Store) Slots() *SlotStore {
	return &SlotStore{core: s}
}

func (s *Store) Reservations() *ReservationStore {
	return &ReservationStore{core: s}
}

// write carries a guard and an effect. Commit evaluates every guard before
// applying any effect, so a rejected commit leaves no trace.
type write struct {
	owner *Store
	desc  string
	check func() error
	apply func()
}

func (w *write) Describe() string { return w.desc }

func (s *Store) Commit(_ context.Context, writes ...store.Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	memWrites := make([]*write, 0, len(writes))
	for _, w := range writes {
		mw, ok := w.(*write)
		if !ok || mw.owner != s {
			return infra.NewRepoErr(infra.KindStoreFailure, "write was not built by this memory store")
		}
		memWrites = append(memWrites, mw)
	}
	for _, mw := range memWrites {
		if err := mw.check(); err != nil {
			return err
		}
	}
	for _, mw := range memWrites {
		mw.apply()
	}
	return nil
}

func compositeKey(roomID, slotKey string) string {
	return roomID + "/" + slotKey
}

type SlotStore struct {
	core *Store
}

func (s *SlotStore) Get(_ context.Context, roomID, slotKey string) (*slot.Slot, error) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	row, ok := s.core.slots[compositeKey(roomID, slotKey)]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, fmt.Sprintf("slot %s/%s not found", roomID, slotKey))
	}
	return row.toEntity()
}

func (s *SlotStore) ConditionalUpdate(sl *slot.Slot) store.Write {
	core := s.core
	key := compositeKey(sl.RoomID(), sl.SlotKey())
	expected := sl.Version()
	next := rowFromSlot(sl)
	next.version = expected + 1

	return &write{
		owner: core,
		desc:  fmt.Sprintf("slot %s -> %s", key, sl.Status()),
		check: func() error {
			row, ok := core.slots[key]
			if !ok || row.version != expected {
				return infra.NewRepoErr(infra.KindVersionConflict, "version guard rejected write: slot "+key)
			}
			return nil
		},
		apply: func() {
			core.slots[key] = next
		},
	}
}

func (s *SlotStore) Put(_ context.Context, sl *slot.Slot) error {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	s.core.slots[compositeKey(sl.RoomID(), sl.SlotKey())] = rowFromSlot(sl)
	return nil
}

type ReservationStore struct {
	core *Store
}

func (s *ReservationStore) Get(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	row, ok := s.core.reservations[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, fmt.Sprintf("reservation %s not found", id))
	}
	return row.toEntity()
}

func (s *ReservationStore) ConditionalInsert(r *reservation.Reservation) store.Write {
	core := s.core
	next := rowFromReservation(r)

	return &write{
		owner: core,
		desc:  fmt.Sprintf("reservation %s insert as %s", r.ID(), r.Status()),
		check: func() error {
			if _, exists := core.reservations[next.id]; exists {
				return infra.NewRepoErr(infra.KindVersionConflict, fmt.Sprintf("record already exists: reservation %s", next.id))
			}
			return nil
		},
		apply: func() {
			core.reservations[next.id] = next
		},
	}
}

func (s *ReservationStore) ConditionalUpdate(r *reservation.Reservation) store.Write {
	core := s.core
	expected := r.Version()
	next := rowFromReservation(r)
	next.version = expected + 1

	return &write{
		owner: core,
		desc:  fmt.Sprintf("reservation %s -> %s", r.ID(), r.Status()),
		check: func() error {
			row, ok := core.reservations[next.id]
			if !ok || row.version != expected {
				return infra.NewRepoErr(infra.KindVersionConflict, fmt.Sprintf("version guard rejected write: reservation %s", next.id))
			}
			return nil
		},
		apply: func() {
			core.reservations[next.id] = next
		},
	}
}

func rowFromSlot(sl *slot.Slot) slotRow {
	var occupying *uuid.UUID
	if id := sl.OccupyingReservationID(); id != nil {
		v := *id
		occupying = &v
	}
	return slotRow{
		roomID:    sl.RoomID(),
		slotKey:   sl.SlotKey(),
		status:    sl.Status(),
		occupying: occupying,
		createdAt: sl.CreatedAt(),
		updatedAt: sl.UpdatedAt(),
		version:   sl.Version(),
	}
}

func (r slotRow) toEntity() (*slot.Slot, error) {
	var occupying *uuid.UUID
	if r.occupying != nil {
		v := *r.occupying
		occupying = &v
	}
	return slot.ReconstructSlot(r.roomID, r.slotKey, r.status, occupying, r.createdAt, r.updatedAt, r.version)
}

func rowFromReservation(r *reservation.Reservation) reservationRow {
	return reservationRow{
		id:            r.ID(),
		roomID:        r.RoomID(),
		slotKey:       r.SlotKey(),
		userID:        r.UserID(),
		status:        r.Status(),
		createdAt:     r.CreatedAt(),
		holdExpiresAt: r.HoldExpiresAt(),
		updatedAt:     r.UpdatedAt(),
		version:       r.Version(),
	}
}

func (r reservationRow) toEntity() (*reservation.Reservation, error) {
	return reservation.ReconstructReservation(
		r.id, r.roomID, r.slotKey, r.userID, r.status,
		r.createdAt, r.holdExpiresAt, r.updatedAt, r.version,
	)
}
