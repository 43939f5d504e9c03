package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
)

type BookingCreated struct {
	BookingID  string        `json:"booking_id"`
	TenantID   string        `json:"tenant_id"`
	RoomTypeID string        `json:"room_type_id"`
	RoomUnitID string        `json:"room_unit_id,omitempty"`
	Status     string        `json:"status"`
	CheckIn    string        `json:"check_in"`
	CheckOut   string        `json:"check_out"`
	Nights     int           `json:"nights"`
	Total      MoneyDTO      `json:"total"`
	AmountPaid MoneyDTO      `json:"amount_paid"`
	AmountDue  MoneyDTO      `json:"amount_due"`
	Nightly    []NightlyRate `json:"nightly"`
	CreatedAt  time.Time     `json:"created_at"`
}

func MapBookingCreated(b *domainbooking.Booking) *BookingCreated {
	return &BookingCreated{
		BookingID:  string(b.ID),
		TenantID:   b.TenantID,
		RoomTypeID: string(b.RoomTypeID),
		RoomUnitID: string(b.RoomUnitID),
		Status:     string(b.Status),
		CheckIn:    b.Range.CheckIn.Format(DateLayout),
		CheckOut:   b.Range.CheckOut.Format(DateLayout),
		Nights:     b.Nights(),
		Total:      MapMoney(b.Total),
		AmountPaid: MapMoney(b.AmountPaid),
		AmountDue:  MapMoney(b.AmountDue),
		Nightly:    MapNightly(b.Nightly),
		CreatedAt:  b.CreatedAt,
	}
}
