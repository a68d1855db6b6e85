package usecase

import (
	"context"

	"escaperoom-reservations/internal/domain/slot"
	"escaperoom-reservations/internal/infra"
	"escaperoom-reservations/internal/pkg/clock"
	"escaperoom-reservations/internal/pkg/errs"
)

var ErrSlotNotFound = errs.New("slot not found")

// SlotAdmin covers the provisioning/ingestion surface: creating AVAILABLE
// slots and inspecting slot state. Outside the booking hot path.
type SlotAdmin interface {
	Provision(ctx context.Context, roomID, slotKey string) (*slot.Slot, error)
	Get(ctx context.Context, roomID, slotKey string) (*slot.Slot, error)
}

type slotAdminImpl struct {
	slots SlotStore
	clock clock.Clock
}

func NewSlotAdmin(slots SlotStore, clk clock.Clock) SlotAdmin {
	return &slotAdminImpl{slots: slots, clock: clk}
}

func (a *slotAdminImpl) Provision(ctx context.Context, roomID, slotKey string) (*slot.Slot, error) {
	sl, err := slot.NewSlot(roomID, slotKey, a.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidInput)
	}
	if err := a.slots.Put(ctx, sl); err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return sl, nil
}

func (a *slotAdminImpl) Get(ctx context.Context, roomID, slotKey string) (*slot.Slot, error) {
	sl, err := a.slots.Get(ctx, roomID, slotKey)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, errs.Mark(err, ErrStoreFailure)
	}
	return sl, nil
}
