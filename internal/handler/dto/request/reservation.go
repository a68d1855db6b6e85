package request

type CreateReservationRequest struct {
	UserID string `json:"userId" binding:"required"`
	RoomID string `json:"roomId" binding:"required"`
	SlotID string `json:"slotId" binding:"required"`
}

// ExpireHoldRequest is posted back by the expiry scheduler. FireNotBefore is
// the echo of the scheduled deadline; it is informational only, the deadline
// of record lives on the reservation.
type ExpireHoldRequest struct {
	ReservationID string `json:"reservationId" binding:"required"`
	FireNotBefore int64  `json:"fireNotBefore"`
}
