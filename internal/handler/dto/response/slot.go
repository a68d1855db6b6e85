package response

import (
	"time"

	"escaperoom-reservations/internal/domain/slot"
)

type SlotResponse struct {
	RoomID                 string    `json:"roomId"`
	SlotID                 string    `json:"slotId"`
	Status                 string    `json:"status"`
	OccupyingReservationID *string   `json:"occupyingReservationId"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func FromSlot(sl *slot.Slot) *SlotResponse {
	out := &SlotResponse{
		RoomID:    sl.RoomID(),
		SlotID:    sl.SlotKey(),
		Status:    sl.Status().String(),
		CreatedAt: sl.CreatedAt(),
		UpdatedAt: sl.UpdatedAt(),
	}
	if id := sl.OccupyingReservationID(); id != nil {
		s := id.String()
		out.OccupyingReservationID = &s
	}
	return out
}
