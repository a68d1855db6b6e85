package usecase

import (
	"context"
	"log/slog"
	"time"

	"escaperoom-reservations/internal/domain/reservation"
	"escaperoom-reservations/internal/domain/slot"
	"escaperoom-reservations/internal/infra"
	"escaperoom-reservations/internal/pkg/clock"
	"escaperoom-reservations/internal/pkg/config"
	"escaperoom-reservations/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrSlotUnavailable     = errs.New("slot no longer available")
	ErrReservationNotFound = errs.New("reservation not found")
	ErrSlotRecordMissing   = errs.New("slot record missing for reservation")
	ErrNotConfirmable      = errs.New("reservation not eligible for confirmation")
	ErrNotCancellable      = errs.New("reservation not eligible for cancellation")
	ErrNotExpirable        = errs.New("reservation not eligible for expiry")
	ErrCommitConflict      = errs.New("commit rejected by concurrent update")
	ErrStoreFailure        = errs.New("store operation failed")
	ErrInvalidInput        = errs.New("invalid input")
)

type CreateParams struct {
	UserID  string
	RoomID  string
	SlotKey string
}

// ExpireOutcome distinguishes an applied expiry from a benign skip (the
// reservation was already confirmed or cancelled when the trigger landed).
type ExpireOutcome string

const (
	OutcomeExpired ExpireOutcome = "EXPIRED"
	OutcomeSkipped ExpireOutcome = "SKIPPED"
)

// BookingCommands is the coordinator for the reservation/slot pair. Each
// operation reads both records, validates eligibility against the snapshot,
// and submits paired version-guarded writes in one atomic commit. Nothing is
// retried here: a lost race surfaces as ErrCommitConflict and the caller
// decides whether to re-attempt with a fresh read.
type BookingCommands interface {
	Create(ctx context.Context, p CreateParams) (*reservation.Reservation, error)
	Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	Confirm(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	ExpireHold(ctx context.Context, id uuid.UUID) (ExpireOutcome, error)
}

type bookingCommandsImpl struct {
	slots        SlotStore
	reservations ReservationStore
	committer    Committer
	scheduler    ExpiryScheduler
	clock        clock.Clock
	holdTTL      time.Duration
}

func NewBookingCommands(
	slots SlotStore,
	reservations ReservationStore,
	committer Committer,
	scheduler ExpiryScheduler,
	clk clock.Clock,
	cfg config.BookingConfig,
) BookingCommands {
	return &bookingCommandsImpl{
		slots:        slots,
		reservations: reservations,
		committer:    committer,
		scheduler:    scheduler,
		clock:        clk,
		holdTTL:      cfg.HoldTTL,
	}
}

func (b *bookingCommandsImpl) Create(ctx context.Context, p CreateParams) (*reservation.Reservation, error) {
	sl, err := b.slots.Get(ctx, p.RoomID, p.SlotKey)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			slog.Warn("slot not available", "room_id", p.RoomID, "slot_key", p.SlotKey)
			return nil, ErrSlotUnavailable
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	if !sl.IsAvailable() {
		slog.Warn("slot not available",
			"room_id", p.RoomID, "slot_key", p.SlotKey, "slot_status", sl.Status().String())
		return nil, ErrSlotUnavailable
	}

	now := b.clock.Now()
	res, err := reservation.NewHold(p.RoomID, p.SlotKey, p.UserID, now, b.holdTTL)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidInput)
	}
	if err := sl.Hold(res.ID(), now); err != nil {
		return nil, ErrSlotUnavailable
	}

	err = b.committer.Commit(ctx,
		b.slots.ConditionalUpdate(sl),
		b.reservations.ConditionalInsert(res),
	)
	if err != nil {
		if infra.IsKind(err, infra.KindVersionConflict) {
			slog.Warn("lost create race for slot", "room_id", p.RoomID, "slot_key", p.SlotKey)
			return nil, errs.Mark(err, ErrCommitConflict)
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	slog.Info("reservation created",
		"reservation_id", res.ID().String(),
		"room_id", p.RoomID,
		"slot_key", p.SlotKey,
		"hold_expires_at", res.HoldExpiresAt())

	b.scheduleExpiry(ctx, res.ID(), res.HoldExpiresAt())
	return res, nil
}

func (b *bookingCommandsImpl) Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := b.reservations.Get(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return res, nil
}

func (b *bookingCommandsImpl) Confirm(ctx context.Context, id uuid.UUID) error {
	res, sl, err := b.readPair(ctx, id)
	if err != nil {
		return err
	}

	// Eligibility is defined purely on current status; the hold deadline is
	// deliberately not re-checked against the wall clock. The expiry trigger
	// is the release authority, and a confirm landing before it wins.
	if !sl.IsOccupiedBy(res.ID()) || !res.IsHold() || sl.Status() != slot.StatusHold {
		slog.Warn("confirmation rejected",
			"reservation_id", id.String(),
			"reservation_status", res.Status().String(),
			"slot_status", sl.Status().String())
		return ErrNotConfirmable
	}

	now := b.clock.Now()
	if err := res.Confirm(now); err != nil {
		return errs.Mark(err, ErrNotConfirmable)
	}
	if err := sl.Book(now); err != nil {
		return errs.Mark(err, ErrNotConfirmable)
	}

	if err := b.commitPair(ctx, res, sl); err != nil {
		return err
	}
	slog.Info("reservation confirmed", "reservation_id", id.String())
	return nil
}

func (b *bookingCommandsImpl) Cancel(ctx context.Context, id uuid.UUID) error {
	res, sl, err := b.readPair(ctx, id)
	if err != nil {
		return err
	}

	eligibleSlot := sl.Status() == slot.StatusHold || sl.Status() == slot.StatusBooked
	if !sl.IsOccupiedBy(res.ID()) || !eligibleSlot {
		slog.Warn("cancellation rejected",
			"reservation_id", id.String(),
			"reservation_status", res.Status().String(),
			"slot_status", sl.Status().String())
		return ErrNotCancellable
	}

	now := b.clock.Now()
	if err := res.Cancel(now); err != nil {
		return errs.Mark(err, ErrNotCancellable)
	}
	if err := sl.Release(now); err != nil {
		return errs.Mark(err, ErrNotCancellable)
	}

	if err := b.commitPair(ctx, res, sl); err != nil {
		return err
	}
	slog.Info("reservation cancelled", "reservation_id", id.String())
	return nil
}

// ExpireHold is invoked only by the automated trigger path. A reservation
// that already left HOLD is a no-op success: the trigger raced a user action
// and lost, which is the intended outcome.
func (b *bookingCommandsImpl) ExpireHold(ctx context.Context, id uuid.UUID) (ExpireOutcome, error) {
	res, err := b.reservations.Get(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return "", ErrReservationNotFound
		}
		return "", errs.Mark(err, ErrStoreFailure)
	}
	if !res.IsHold() {
		slog.Info("expiry skipped, reservation no longer on hold",
			"reservation_id", id.String(),
			"reservation_status", res.Status().String())
		return OutcomeSkipped, nil
	}

	sl, err := b.slots.Get(ctx, res.RoomID(), res.SlotKey())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			slog.Error("slot record missing for held reservation",
				"reservation_id", id.String(),
				"room_id", res.RoomID(),
				"slot_key", res.SlotKey())
			return "", ErrSlotRecordMissing
		}
		return "", errs.Mark(err, ErrStoreFailure)
	}

	now := b.clock.Now()
	if !res.HoldDeadlinePassed(now) {
		slog.Warn("expiry trigger fired before the hold deadline",
			"reservation_id", id.String(),
			"hold_expires_at", res.HoldExpiresAt(),
			"now", now)
		return "", ErrNotExpirable
	}
	if sl.Status() != slot.StatusHold || !sl.IsOccupiedBy(res.ID()) {
		slog.Error("expiry eligibility failed, slot disagrees with reservation",
			"reservation_id", id.String(),
			"slot_status", sl.Status().String())
		return "", ErrNotExpirable
	}

	if err := res.Expire(now); err != nil {
		return "", errs.Mark(err, ErrNotExpirable)
	}
	if err := sl.Release(now); err != nil {
		return "", errs.Mark(err, ErrNotExpirable)
	}

	if err := b.commitPair(ctx, res, sl); err != nil {
		return "", err
	}
	slog.Info("hold expired, slot released",
		"reservation_id", id.String(),
		"room_id", res.RoomID(),
		"slot_key", res.SlotKey())
	return OutcomeExpired, nil
}

// readPair loads a reservation and its slot, mapping not-found outcomes to
// validation failures. A missing slot for an existing reservation means the
// cross-entity invariants were violated upstream, so it is logged at error
// severity.
func (b *bookingCommandsImpl) readPair(ctx context.Context, id uuid.UUID) (*reservation.Reservation, *slot.Slot, error) {
	res, err := b.reservations.Get(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, ErrReservationNotFound
		}
		return nil, nil, errs.Mark(err, ErrStoreFailure)
	}

	sl, err := b.slots.Get(ctx, res.RoomID(), res.SlotKey())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			slog.Error("slot record missing for reservation",
				"reservation_id", id.String(),
				"room_id", res.RoomID(),
				"slot_key", res.SlotKey())
			return nil, nil, ErrSlotRecordMissing
		}
		return nil, nil, errs.Mark(err, ErrStoreFailure)
	}
	return res, sl, nil
}

func (b *bookingCommandsImpl) commitPair(ctx context.Context, res *reservation.Reservation, sl *slot.Slot) error {
	err := b.committer.Commit(ctx,
		b.slots.ConditionalUpdate(sl),
		b.reservations.ConditionalUpdate(res),
	)
	if err != nil {
		if infra.IsKind(err, infra.KindVersionConflict) {
			slog.Warn("commit lost race with concurrent operation", "reservation_id", res.ID().String())
			return errs.Mark(err, ErrCommitConflict)
		}
		return errs.Mark(err, ErrStoreFailure)
	}
	return nil
}

// scheduleExpiry runs off the request's critical path. A scheduling failure
// only delays automatic release; it must never undo the created reservation.
func (b *bookingCommandsImpl) scheduleExpiry(ctx context.Context, id uuid.UUID, fireAt time.Time) {
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := b.scheduler.Schedule(detached, id, fireAt); err != nil {
			slog.Warn("failed to schedule hold expiry, hold will not auto-release",
				"reservation_id", id.String(),
				"error", err.Error())
		}
	}()
}
