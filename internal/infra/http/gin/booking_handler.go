package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "staybook/internal/app/handlers/booking"
)

type BookingHandler struct {
	Engine Engine
	Logger *slog.Logger
}

type createBookingRequest struct {
	RoomTypeID string                `json:"room_type_id"`
	RoomUnitID string                `json:"room_unit_id"`
	CheckIn    string                `json:"check_in"`
	CheckOut   string                `json:"check_out"`
	Guest      bookingapp.GuestInput `json:"guest"`
	Guests     int                   `json:"guests"`
	Channel    string                `json:"channel"`
	AmountPaid int64                 `json:"amount_paid"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	checkIn, ok := parseDay(c, "check_in", req.CheckIn)
	if !ok {
		return
	}
	checkOut, ok := parseDay(c, "check_out", req.CheckOut)
	if !ok {
		return
	}
	result, err := h.Engine.CreateBooking(c.Request.Context(), bookingapp.CreateBookingCommand{
		TenantID:        c.GetString("tenant_id"),
		RoomTypeID:      req.RoomTypeID,
		RoomUnitID:      req.RoomUnitID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guest:           req.Guest,
		Guests:          req.Guests,
		Channel:         req.Channel,
		AmountPaid:      req.AmountPaid,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ BookingHTTP = BookingHandler{}
