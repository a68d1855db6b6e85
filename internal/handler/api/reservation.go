package api

import (
	"errors"
	"net/http"

	reqdto "escaperoom-reservations/internal/handler/dto/request"
	resdto "escaperoom-reservations/internal/handler/dto/response"
	"escaperoom-reservations/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	booking usecase.BookingCommands
}

func NewReservationHandler(booking usecase.BookingCommands) *ReservationHandler {
	return &ReservationHandler{
		booking: booking,
	}
}

// @Summary Create reservation
// @Description Place a time-boxed hold on an escape room slot
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	params := usecase.CreateParams{
		UserID:  req.UserID,
		RoomID:  req.RoomID,
		SlotKey: req.SlotID,
	}

	res, err := h.booking.Create(c.Request.Context(), params)
	if err != nil {
		switch {
		// A commit rejected by the version guard means another caller took the
		// slot between our read and write, which to the user is the same thing
		// as the slot not being available.
		case errors.Is(err, usecase.ErrSlotUnavailable),
			errors.Is(err, usecase.ErrCommitConflict):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "The escape room time slot is no longer available",
			})
		case errors.Is(err, usecase.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromReservation(res))
}

// @Summary Get reservation
// @Description Get reservation by ID
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	res, err := h.booking.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrReservationNotFound):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "No reservation found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservation(res))
}

// @Summary Confirm reservation
// @Description Convert a held reservation into a confirmed booking
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /reservations/{id}/confirm [post]
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	if err := h.booking.Confirm(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, usecase.ErrReservationNotFound),
			errors.Is(err, usecase.ErrSlotRecordMissing),
			errors.Is(err, usecase.ErrNotConfirmable),
			errors.Is(err, usecase.ErrCommitConflict):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Reservation no longer available.",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reservation confirmed",
	})
}

// @Summary Cancel reservation
// @Description Cancel a held or confirmed reservation and release its slot
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	if err := h.booking.Cancel(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, usecase.ErrReservationNotFound),
			errors.Is(err, usecase.ErrSlotRecordMissing),
			errors.Is(err, usecase.ErrNotCancellable),
			errors.Is(err, usecase.ErrCommitConflict):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Reservation not valid for cancellation",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reservation cancelled",
	})
}

func (h *ReservationHandler) reservationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}
