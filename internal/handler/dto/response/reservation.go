package response

import (
	"time"

	"escaperoom-reservations/internal/domain/reservation"
)

type ReservationResponse struct {
	ReservationID string     `json:"reservationId"`
	RoomID        string     `json:"roomId"`
	SlotID        string     `json:"slotId"`
	UserID        string     `json:"userId"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	HoldExpiresAt *time.Time `json:"holdExpiresAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func FromReservation(res *reservation.Reservation) *ReservationResponse {
	out := &ReservationResponse{
		ReservationID: res.ID().String(),
		RoomID:        res.RoomID(),
		SlotID:        res.SlotKey(),
		UserID:        res.UserID(),
		Status:        res.Status().String(),
		CreatedAt:     res.CreatedAt(),
		UpdatedAt:     res.UpdatedAt(),
	}
	if expiresAt := res.HoldExpiresAt(); !expiresAt.IsZero() {
		out.HoldExpiresAt = &expiresAt
	}
	return out
}
