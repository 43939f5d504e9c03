package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookinghandlers "staybook/internal/app/handlers/booking"
	wallethandlers "staybook/internal/app/handlers/wallet"
	"staybook/internal/domain/shared/fault"
)

func validBooking() bookinghandlers.CreateBookingCommand {
	return bookinghandlers.CreateBookingCommand{
		TenantID:   "hotel-a",
		RoomTypeID: "deluxe",
		CheckIn:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Guest:      bookinghandlers.GuestInput{Name: "Ana Ruiz", Email: "ana@example.com"},
		Guests:     2,
		Channel:    "storefront",
	}
}

func TestValidateBooking(t *testing.T) {
	v := New()
	cases := []struct {
		name    string
		mutate  func(*bookinghandlers.CreateBookingCommand)
		wantErr string
	}{
		{"valid", func(*bookinghandlers.CreateBookingCommand) {}, ""},
		{"missing tenant", func(c *bookinghandlers.CreateBookingCommand) { c.TenantID = "" }, "TenantID is required"},
		{"missing guest name", func(c *bookinghandlers.CreateBookingCommand) { c.Guest.Name = "" }, "Guest.Name is required"},
		{"bad email", func(c *bookinghandlers.CreateBookingCommand) { c.Guest.Email = "not-mail" }, "Guest.Email must be an email address"},
		{"unknown channel", func(c *bookinghandlers.CreateBookingCommand) { c.Channel = "ota" }, "Channel must be one of"},
		{"no guests", func(c *bookinghandlers.CreateBookingCommand) { c.Guests = 0 }, "Guests must be gte 1"},
		{"zero check-in", func(c *bookinghandlers.CreateBookingCommand) { c.CheckIn = time.Time{} }, "CheckIn is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := validBooking()
			tc.mutate(&cmd)
			err := v.Validate(context.Background(), cmd)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, fault.Is(err, fault.KindValidation))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateDebitAmount(t *testing.T) {
	err := New().Validate(context.Background(), &wallethandlers.DebitCommand{TenantID: "hotel-a", Amount: 0, Reason: "sms"})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.KindValidation))
	assert.Contains(t, err.Error(), "Amount must be gt 0")
}

func TestValidateIgnoresNonStructs(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(context.Background(), nil))
	assert.NoError(t, v.Validate(context.Background(), "plain"))
	var nilCmd *wallethandlers.DebitCommand
	assert.NoError(t, v.Validate(context.Background(), nilCmd))
}
