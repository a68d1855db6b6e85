package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"escaperoom-reservations/internal/domain/reservation"
	"escaperoom-reservations/internal/infra"
	"escaperoom-reservations/internal/infra/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationStore struct {
	pool *pgxpool.Pool
}

func NewReservationStore(pool *pgxpool.Pool) *ReservationStore {
	return &ReservationStore{pool: pool}
}

func (s *ReservationStore) Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	const query = `
SELECT id, room_id, slot_key, user_id, status, created_at, hold_expires_at, updated_at, version
FROM reservations
WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, fmt.Sprintf("reservation %s not found", id))
		}
		return nil, infra.WrapRepoErr(infra.KindStoreFailure, "failed to get reservation", err)
	}
	return res, nil
}

// ConditionalInsert builds a write that inserts a fresh reservation. The
// commit is rejected if a record with the same id already exists.
func (s *ReservationStore) ConditionalInsert(r *reservation.Reservation) store.Write {
	return &write{
		desc: fmt.Sprintf("reservation %s insert as %s", r.ID(), r.Status()),
		stmt: `
INSERT INTO reservations (id, room_id, slot_key, user_id, status, created_at, hold_expires_at, updated_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`,
		args: []any{
			r.ID(),
			r.RoomID(),
			r.SlotKey(),
			r.UserID(),
			r.Status().String(),
			r.CreatedAt(),
			nullableTime(r.HoldExpiresAt()),
			r.UpdatedAt(),
			r.Version(),
		},
	}
}

// ConditionalUpdate builds a write that persists the reservation's current
// in-memory state, guarded on the version it was read at.
func (s *ReservationStore) ConditionalUpdate(r *reservation.Reservation) store.Write {
	return &write{
		desc: fmt.Sprintf("reservation %s -> %s", r.ID(), r.Status()),
		stmt: `
UPDATE reservations
SET status = $1, hold_expires_at = $2, updated_at = $3, version = version + 1
WHERE id = $4 AND version = $5`,
		args: []any{
			r.Status().String(),
			nullableTime(r.HoldExpiresAt()),
			r.UpdatedAt(),
			r.ID(),
			r.Version(),
		},
	}
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id                      uuid.UUID
		roomID, slotKey, userID string
		rawStatus               string
		createdAt, updatedAt    time.Time
		holdExpiresAt           *time.Time
		version                 int64
	)
	if err := row.Scan(&id, &roomID, &slotKey, &userID, &rawStatus, &createdAt, &holdExpiresAt, &updatedAt, &version); err != nil {
		return nil, err
	}
	status, err := reservation.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	var expiresAt time.Time
	if holdExpiresAt != nil {
		expiresAt = *holdExpiresAt
	}
	return reservation.ReconstructReservation(id, roomID, slotKey, userID, status, createdAt, expiresAt, updatedAt, version)
}

// nullableTime maps the zero time to NULL so a cleared hold deadline is
// stored as absent rather than an epoch sentinel.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
