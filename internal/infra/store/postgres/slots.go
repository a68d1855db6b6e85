package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"escaperoom-reservations/internal/domain/slot"
	"escaperoom-reservations/internal/infra"
	"escaperoom-reservations/internal/infra/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SlotStore struct {
	pool *pgxpool.Pool
}

func NewSlotStore(pool *pgxpool.Pool) *SlotStore {
	return &SlotStore{pool: pool}
}

func (s *SlotStore) Get(ctx context.Context, roomID, slotKey string) (*slot.Slot, error) {
	const query = `
SELECT room_id, slot_key, status, occupying_reservation_id, created_at, updated_at, version
FROM slots
WHERE room_id = $1 AND slot_key = $2`

	row := s.pool.QueryRow(ctx, query, roomID, slotKey)
	sl, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, fmt.Sprintf("slot %s/%s not found", roomID, slotKey))
		}
		return nil, infra.WrapRepoErr(infra.KindStoreFailure, "failed to get slot", err)
	}
	return sl, nil
}

// ConditionalUpdate builds a write that persists the slot's current in-memory
// state, guarded on the version it was read at.
func (s *SlotStore) ConditionalUpdate(sl *slot.Slot) store.Write {
	return &write{
		desc: fmt.Sprintf("slot %s/%s -> %s", sl.RoomID(), sl.SlotKey(), sl.Status()),
		stmt: `
UPDATE slots
SET status = $1, occupying_reservation_id = $2, updated_at = $3, version = version + 1
WHERE room_id = $4 AND slot_key = $5 AND version = $6`,
		args: []any{
			sl.Status().String(),
			sl.OccupyingReservationID(),
			sl.UpdatedAt(),
			sl.RoomID(),
			sl.SlotKey(),
			sl.Version(),
		},
	}
}

// Put writes a slot unconditionally. Provisioning/ingestion only; booking
// operations go through ConditionalUpdate.
func (s *SlotStore) Put(ctx context.Context, sl *slot.Slot) error {
	const stmt = `
INSERT INTO slots (room_id, slot_key, status, occupying_reservation_id, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (room_id, slot_key) DO UPDATE
SET status = EXCLUDED.status,
    occupying_reservation_id = EXCLUDED.occupying_reservation_id,
    updated_at = EXCLUDED.updated_at,
    version = slots.version + 1`

	_, err := s.pool.Exec(ctx, stmt,
		sl.RoomID(),
		sl.SlotKey(),
		sl.Status().String(),
		sl.OccupyingReservationID(),
		sl.CreatedAt(),
		sl.UpdatedAt(),
		sl.Version(),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindStoreFailure, "failed to put slot", err)
	}
	return nil
}

func scanSlot(row pgx.Row) (*slot.Slot, error) {
	var (
		roomID, slotKey, rawStatus string
		occupying                  *uuid.UUID
		createdAt, updatedAt       time.Time
		version                    int64
	)
	if err := row.Scan(&roomID, &slotKey, &rawStatus, &occupying, &createdAt, &updatedAt, &version); err != nil {
		return nil, err
	}
	status, err := slot.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return slot.ReconstructSlot(roomID, slotKey, status, occupying, createdAt, updatedAt, version)
}
