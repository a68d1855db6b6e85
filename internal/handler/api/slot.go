package api

import (
	"errors"
	"net/http"

	reqdto "escaperoom-reservations/internal/handler/dto/request"
	resdto "escaperoom-reservations/internal/handler/dto/response"
	"escaperoom-reservations/internal/handler/httperr"
	"escaperoom-reservations/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SlotHandler struct {
	admin usecase.SlotAdmin
}

func NewSlotHandler(admin usecase.SlotAdmin) *SlotHandler {
	return &SlotHandler{
		admin: admin,
	}
}

// @Summary Provision slot
// @Description Register a new bookable slot in the AVAILABLE state
// @Tags slots
// @Accept json
// @Produce json
// @Param request body reqdto.ProvisionSlotRequest true "Slot to provision"
// @Success 201 {object} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /admin/slots [put]
func (h *SlotHandler) ProvisionSlot(c *gin.Context) {
	var req reqdto.ProvisionSlotRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format")
		return
	}

	sl, err := h.admin.Provision(c.Request.Context(), req.RoomID, req.SlotID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromSlot(sl))
}

// @Summary Get slot
// @Description Inspect the current state of a slot
// @Tags slots
// @Produce json
// @Param roomId path string true "Room ID"
// @Param slotId path string true "Slot key (URL-encoded)"
// @Success 200 {object} resdto.SlotResponse
// @Failure 404 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /admin/slots/{roomId}/{slotId} [get]
func (h *SlotHandler) GetSlot(c *gin.Context) {
	roomID := c.Param("roomId")
	slotID := c.Param("slotId")

	sl, err := h.admin.Get(c.Request.Context(), roomID, slotID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSlotNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Slot not found")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromSlot(sl))
}
