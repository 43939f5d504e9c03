package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/fault"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"same day", day(2024, 1, 10), day(2024, 1, 10)},
		{"inverted", day(2024, 1, 12), day(2024, 1, 10)},
		{"same day different hours", day(2024, 1, 10).Add(2 * time.Hour), day(2024, 1, 10).Add(20 * time.Hour)},
		{"zero checkout", day(2024, 1, 10), time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.checkIn, tt.checkOut)
			require.ErrorIs(t, err, ErrInvalidRange)
			assert.Equal(t, fault.KindValidation, fault.KindOf(err))
		})
	}
}

func TestNewNormalizesToCalendarDays(t *testing.T) {
	dr, err := New(time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC), time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 10), dr.CheckIn)
	assert.Equal(t, day(2024, 1, 12), dr.CheckOut)
	assert.Equal(t, 2, dr.Nights())
	assert.Equal(t, []time.Time{day(2024, 1, 10), day(2024, 1, 11)}, dr.Days())
}

func TestNightsAcrossDSTBoundary(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	dr, err := New(time.Date(2024, 3, 30, 14, 0, 0, 0, loc), time.Date(2024, 4, 1, 11, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 2, dr.Nights())
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	base := DateRange{CheckIn: day(2024, 1, 10), CheckOut: day(2024, 1, 12)}
	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"touching after", DateRange{CheckIn: day(2024, 1, 12), CheckOut: day(2024, 1, 14)}, false},
		{"touching before", DateRange{CheckIn: day(2024, 1, 8), CheckOut: day(2024, 1, 10)}, false},
		{"shares one night", DateRange{CheckIn: day(2024, 1, 11), CheckOut: day(2024, 1, 13)}, true},
		{"contains", DateRange{CheckIn: day(2024, 1, 1), CheckOut: day(2024, 1, 31)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestContainsDateExcludesCheckout(t *testing.T) {
	dr := DateRange{CheckIn: day(2024, 1, 10), CheckOut: day(2024, 1, 12)}
	assert.True(t, dr.ContainsDate(day(2024, 1, 10)))
	assert.True(t, dr.ContainsDate(day(2024, 1, 11).Add(23*time.Hour)))
	assert.False(t, dr.ContainsDate(day(2024, 1, 12)))
}

func TestNewBoundsLength(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		wantErr  error
	}{
		{"leap year at limit", day(2024, 1, 1), day(2025, 1, 1), nil},
		{"one night over", day(2024, 1, 1), day(2025, 1, 2), ErrRangeTooLong},
		{"millennia", day(2, 1, 1), day(9999, 12, 31), ErrRangeTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, err := New(tt.checkIn, tt.checkOut)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, MaxNights, dr.Nights())
				assert.Len(t, dr.Days(), MaxNights)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, fault.KindValidation, fault.KindOf(err))
		})
	}
}
