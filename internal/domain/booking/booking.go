package booking

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/inventory"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
	"staybook/internal/domain/shared/money"
)

var (
	ErrInvalidGuests     = fault.New(fault.KindValidation, "booking: guests count must be positive")
	ErrGuestNameRequired = fault.New(fault.KindValidation, "booking: guest name required")
	ErrInvalidState      = fault.New(fault.KindValidation, "booking: invalid state transition")
	ErrInvalidChannel    = fault.New(fault.KindValidation, "booking: unknown booking channel")
	ErrInvalidPayment    = fault.New(fault.KindValidation, "booking: payment must be positive and not exceed the amount due")
	ErrEmptyQuote        = fault.New(fault.KindValidation, "booking: quote does not cover the stay")
	ErrBookingNotFound   = fault.New(fault.KindNotFound, "booking: not found")
)

type BookingID string

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// BlockingStatuses hold inventory; every other status frees the nights.
var BlockingStatuses = []Status{StatusPending, StatusConfirmed, StatusCheckedIn}

func (s Status) BlocksInventory() bool {
	for _, b := range BlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// Channel decides the initial status of a new booking.
type Channel string

const (
	ChannelStorefront Channel = "storefront"
	ChannelFrontDesk  Channel = "front_desk"
	ChannelAdmin      Channel = "admin"
)

func (c Channel) initialStatus() (Status, error) {
	switch c {
	case ChannelStorefront:
		return StatusPending, nil
	case ChannelFrontDesk, ChannelAdmin:
		return StatusConfirmed, nil
	default:
		return "", ErrInvalidChannel
	}
}

type Guest struct {
	Name  string
	Email string
	Phone string
}

type Booking struct {
	ID         BookingID
	TenantID   string
	RoomTypeID inventory.RoomTypeID
	RoomUnitID inventory.RoomUnitID
	Guest      Guest
	Guests     int
	Range      daterange.DateRange
	Channel    Channel
	Status     Status
	Nightly    []pricing.NightlyRate
	Total      money.Money
	AmountPaid money.Money
	AmountDue  money.Money
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, tenantID string, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	// Overlapping returns bookings of the room type in a blocking status whose
	// range shares a night with dr.
	Overlapping(ctx context.Context, tenantID string, roomType inventory.RoomTypeID, dr daterange.DateRange) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	TenantID   string
	RoomTypeID inventory.RoomTypeID
	RoomUnitID inventory.RoomUnitID
	Guest      Guest
	Guests     int
	Channel    Channel
	Quote      pricing.Quote
	AmountPaid int64
	CreatedAt  time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if strings.TrimSpace(params.Guest.Name) == "" {
		return nil, ErrGuestNameRequired
	}
	status, err := params.Channel.initialStatus()
	if err != nil {
		return nil, err
	}
	quote := params.Quote.Copy()
	if err := quote.Range.Validate(); err != nil {
		return nil, err
	}
	if quote.Nights() != quote.Range.Nights() {
		return nil, ErrEmptyQuote
	}
	total := quote.Subtotal
	if params.AmountPaid < 0 || params.AmountPaid > total.Amount {
		return nil, ErrInvalidPayment
	}
	paid := money.Money{Amount: params.AmountPaid, Currency: total.Currency}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		TenantID:   params.TenantID,
		RoomTypeID: params.RoomTypeID,
		RoomUnitID: params.RoomUnitID,
		Guest:      params.Guest,
		Guests:     params.Guests,
		Range:      quote.Range,
		Channel:    params.Channel,
		Status:     status,
		Nightly:    quote.Nightly,
		Total:      total,
		AmountPaid: paid,
		AmountDue:  money.Money{Amount: total.Amount - paid.Amount, Currency: total.Currency},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingCreated{
		BookingID:  b.ID,
		TenantID:   b.TenantID,
		RoomTypeID: string(b.RoomTypeID),
		RoomUnitID: string(b.RoomUnitID),
		Range:      b.Range,
		Status:     b.Status,
		Total:      b.Total,
		At:         now,
	})
	return b, nil
}

func (b *Booking) Nights() int {
	return b.Range.Nights()
}

// Hold projects the booking onto the capacity model.
func (b *Booking) Hold() availability.Hold {
	return availability.Hold{Reference: string(b.ID), UnitID: b.RoomUnitID, Range: b.Range}
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	return b.transition(StatusConfirmed, now)
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	return b.transition(StatusCheckedIn, now)
}

func (b *Booking) CheckOut(now time.Time) error {
	if b.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	return b.transition(StatusCheckedOut, now)
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) MarkNoShow(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	return b.transition(StatusNoShow, now)
}

// RecordPayment moves amount from due to paid.
func (b *Booking) RecordPayment(amount int64, now time.Time) error {
	if b.Status == StatusCancelled || b.Status == StatusNoShow {
		return ErrInvalidState
	}
	if amount <= 0 || amount > b.AmountDue.Amount {
		return ErrInvalidPayment
	}
	b.AmountPaid.Amount += amount
	b.AmountDue.Amount -= amount
	b.UpdatedAt = now.UTC()
	b.Record(PaymentRecorded{BookingID: b.ID, Amount: money.Money{Amount: amount, Currency: b.Total.Currency}, Due: b.AmountDue, At: b.UpdatedAt})
	return nil
}

func (b *Booking) transition(to Status, now time.Time) error {
	from := b.Status
	b.Status = to
	b.UpdatedAt = now.UTC()
	b.Record(StatusChanged{BookingID: b.ID, From: from, To: to, At: b.UpdatedAt})
	return nil
}
