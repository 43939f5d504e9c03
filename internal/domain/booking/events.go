package booking

import (
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type BookingCreated struct {
	BookingID  BookingID
	TenantID   string
	RoomTypeID string
	RoomUnitID string `json:",omitempty"`
	Range      daterange.DateRange
	Status     Status
	Total      money.Money
	At         time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	BookingID BookingID
	From      Status
	To        Status
	At        time.Time
}

func (e StatusChanged) EventName() string     { return "booking.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type PaymentRecorded struct {
	BookingID BookingID
	Amount    money.Money
	Due       money.Money
	At        time.Time
}

func (e PaymentRecorded) EventName() string     { return "booking.payment_recorded" }
func (e PaymentRecorded) AggregateID() string   { return string(e.BookingID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }
