package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

func quote(t *testing.T) pricing.Quote {
	t.Helper()
	dr, err := daterange.New(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return pricing.PriceStay(pricing.Config{Currency: "USD", BasePrice: 5000}, dr)
}

func params(t *testing.T, channel Channel) CreateParams {
	return CreateParams{
		ID:         "b1",
		TenantID:   "t1",
		RoomTypeID: "deluxe",
		Guest:      Guest{Name: "Ada"},
		Guests:     2,
		Channel:    channel,
		Quote:      quote(t),
		AmountPaid: 2000,
		CreatedAt:  time.Now(),
	}
}

func TestNewBookingInitialStatusByChannel(t *testing.T) {
	tests := []struct {
		channel Channel
		status  Status
	}{
		{ChannelStorefront, StatusPending},
		{ChannelFrontDesk, StatusConfirmed},
		{ChannelAdmin, StatusConfirmed},
	}
	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			b, err := NewBooking(params(t, tt.channel))
			require.NoError(t, err)
			assert.Equal(t, tt.status, b.Status)
		})
	}

	_, err := NewBooking(params(t, "ota"))
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestNewBookingAmounts(t *testing.T) {
	b, err := NewBooking(params(t, ChannelStorefront))
	require.NoError(t, err)

	assert.Equal(t, 2, b.Nights())
	assert.Len(t, b.Nightly, 2)
	assert.EqualValues(t, 10000, b.Total.Amount)
	assert.EqualValues(t, 2000, b.AmountPaid.Amount)
	assert.EqualValues(t, 8000, b.AmountDue.Amount)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.created", events[0].EventName())
}

func TestNewBookingRejectsBadInput(t *testing.T) {
	p := params(t, ChannelStorefront)
	p.Guests = 0
	_, err := NewBooking(p)
	assert.ErrorIs(t, err, ErrInvalidGuests)

	p = params(t, ChannelStorefront)
	p.AmountPaid = 20000
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, ErrInvalidPayment)

	p = params(t, ChannelStorefront)
	p.Guest.Name = "  "
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, ErrGuestNameRequired)
}

func TestLifecycleMovesForwardOnly(t *testing.T) {
	now := time.Now()
	b, err := NewBooking(params(t, ChannelStorefront))
	require.NoError(t, err)

	assert.ErrorIs(t, b.CheckIn(now), ErrInvalidState)
	require.NoError(t, b.Confirm(now))
	assert.ErrorIs(t, b.Confirm(now), ErrInvalidState)
	require.NoError(t, b.CheckIn(now))
	assert.True(t, b.Status.BlocksInventory())
	assert.ErrorIs(t, b.Cancel("late", now), ErrInvalidState)
	require.NoError(t, b.CheckOut(now))
	assert.False(t, b.Status.BlocksInventory())
}

func TestCancelAndNoShowReleaseInventory(t *testing.T) {
	now := time.Now()
	b, err := NewBooking(params(t, ChannelFrontDesk))
	require.NoError(t, err)
	require.NoError(t, b.MarkNoShow(now))
	assert.False(t, b.Status.BlocksInventory())

	b, err = NewBooking(params(t, ChannelStorefront))
	require.NoError(t, err)
	require.NoError(t, b.Cancel("guest request", now))
	assert.Equal(t, StatusCancelled, b.Status)
	assert.ErrorIs(t, b.RecordPayment(100, now), ErrInvalidState)
}

func TestRecordPayment(t *testing.T) {
	now := time.Now()
	b, err := NewBooking(params(t, ChannelFrontDesk))
	require.NoError(t, err)

	require.NoError(t, b.RecordPayment(8000, now))
	assert.EqualValues(t, 10000, b.AmountPaid.Amount)
	assert.Zero(t, b.AmountDue.Amount)
	assert.ErrorIs(t, b.RecordPayment(1, now), ErrInvalidPayment)
}

func TestHoldProjection(t *testing.T) {
	p := params(t, ChannelAdmin)
	p.RoomUnitID = "101"
	b, err := NewBooking(p)
	require.NoError(t, err)

	h := b.Hold()
	assert.Equal(t, "b1", h.Reference)
	assert.EqualValues(t, "101", h.UnitID)
	assert.Equal(t, b.Range, h.Range)
}
