package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "staybook/internal/app/handlers/availability"
)

type AvailabilityHandler struct {
	Engine Engine
	Logger *slog.Logger
}

// Check answers GET /room-types/:id/availability?check_in&check_out[&room_unit_id].
func (h AvailabilityHandler) Check(c *gin.Context) {
	checkIn, ok := parseDay(c, "check_in", c.Query("check_in"))
	if !ok {
		return
	}
	checkOut, ok := parseDay(c, "check_out", c.Query("check_out"))
	if !ok {
		return
	}
	result, err := h.Engine.Availability(c.Request.Context(), availabilityapp.CheckAvailabilityQuery{
		TenantID:         c.GetString("tenant_id"),
		RoomTypeID:       c.Param("id"),
		RoomUnitID:       c.Query("room_unit_id"),
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		ExcludeBookingID: c.Query("exclude_booking_id"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Quote(c *gin.Context) {
	checkIn, ok := parseDay(c, "check_in", c.Query("check_in"))
	if !ok {
		return
	}
	checkOut, ok := parseDay(c, "check_out", c.Query("check_out"))
	if !ok {
		return
	}
	result, err := h.Engine.PriceStay(c.Request.Context(), availabilityapp.PriceStayQuery{
		TenantID:   c.GetString("tenant_id"),
		RoomTypeID: c.Param("id"),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	from, ok := parseDay(c, "from", c.Query("from"))
	if !ok {
		return
	}
	to, ok := parseDay(c, "to", c.Query("to"))
	if !ok {
		return
	}
	result, err := h.Engine.Calendar(c.Request.Context(), availabilityapp.CalendarQuery{
		TenantID:   c.GetString("tenant_id"),
		RoomTypeID: c.Param("id"),
		From:       from,
		To:         to,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
