package request

type ProvisionSlotRequest struct {
	RoomID string `json:"roomId" binding:"required"`
	SlotID string `json:"slotId" binding:"required"`
}
