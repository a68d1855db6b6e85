package api

import (
	"errors"
	"net/http"

	reqdto "escaperoom-reservations/internal/handler/dto/request"
	"escaperoom-reservations/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	expiryStatusCompleted  = "COMPLETED"
	expiryStatusErrorInput = "ERROR_INPUT"
)

// ExpiryHandler receives the delayed expire-hold callbacks from the
// scheduler. Its response contract drives the scheduler's retry decision: a
// 4xx with ERROR_INPUT means the trigger is permanently unprocessable, a 5xx
// means a transient failure worth redelivering.
type ExpiryHandler struct {
	booking usecase.BookingCommands
}

func NewExpiryHandler(booking usecase.BookingCommands) *ExpiryHandler {
	return &ExpiryHandler{
		booking: booking,
	}
}

// @Summary Expire hold
// @Description System-only callback that releases a hold whose deadline passed
// @Tags internal
// @Accept json
// @Produce json
// @Param request body reqdto.ExpireHoldRequest true "Expiry trigger payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /internal/expire-hold [post]
func (h *ExpiryHandler) ExpireHold(c *gin.Context) {
	var req reqdto.ExpireHoldRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  expiryStatusErrorInput,
			"message": "reservationId is required",
		})
		return
	}

	id, err := uuid.Parse(req.ReservationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  expiryStatusErrorInput,
			"message": "reservationId is not a valid UUID",
		})
		return
	}

	_, err = h.booking.ExpireHold(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrReservationNotFound):
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  expiryStatusErrorInput,
				"message": "no reservation found for the given id",
			})
		case errors.Is(err, usecase.ErrNotExpirable),
			errors.Is(err, usecase.ErrSlotRecordMissing):
			// Redelivery cannot make these succeed, so answer with the
			// non-retried envelope.
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  expiryStatusErrorInput,
				"message": "reservation is not eligible for expiry",
			})
		default:
			// Store failures and lost commit races propagate as 5xx so the
			// scheduler redelivers; the rerun re-reads fresh state and either
			// applies or skips.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservationId": id.String(),
		"status":        expiryStatusCompleted,
	})
}
