package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/inventory"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/fault"
)

func rng(t *testing.T, from, to int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(time.Date(2024, 1, from, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, to, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return dr
}

func roomType(units int) *inventory.RoomType {
	return &inventory.RoomType{ID: "deluxe", TenantID: "t1", TotalUnits: units}
}

func TestSingleUnitTouchingRangesFit(t *testing.T) {
	cal := NewCalendar(roomType(1), []Hold{{Reference: "b1", Range: rng(t, 10, 12)}})

	assert.True(t, cal.CanReserve(Request{Range: rng(t, 12, 14)}))
	assert.True(t, cal.CanReserve(Request{Range: rng(t, 8, 10)}))

	err := cal.Check(Request{Range: rng(t, 11, 13)})
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
}

func TestExcludeReferenceIgnoresBookingBeingModified(t *testing.T) {
	cal := NewCalendar(roomType(1), []Hold{{Reference: "b1", Range: rng(t, 10, 12)}})
	assert.False(t, cal.CanReserve(Request{Range: rng(t, 10, 13)}))
	assert.True(t, cal.CanReserve(Request{Range: rng(t, 10, 13), ExcludeReference: "b1"}))
}

func TestPoolCapacityBoundary(t *testing.T) {
	cal := NewCalendar(roomType(2), nil)
	now := time.Now()

	require.NoError(t, cal.Reserve(Request{Range: rng(t, 10, 11)}, "b1", now))
	require.NoError(t, cal.Reserve(Request{Range: rng(t, 10, 11)}, "b2", now))
	err := cal.Reserve(Request{Range: rng(t, 10, 11)}, "b3", now)
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	assert.Len(t, cal.Holds, 2)

	events := cal.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "calendar.overbooking_prevented", events[0].EventName())
}

func TestUnitIsCapacityOfOne(t *testing.T) {
	cal := NewCalendar(roomType(3), []Hold{{Reference: "b1", UnitID: "101", Range: rng(t, 10, 12)}})

	assert.ErrorIs(t, cal.Check(Request{Range: rng(t, 11, 12), UnitID: "101"}), ErrUnitUnavailable)
	assert.NoError(t, cal.Check(Request{Range: rng(t, 11, 12), UnitID: "102"}))
	assert.NoError(t, cal.Check(Request{Range: rng(t, 12, 13), UnitID: "101"}))
}

func TestUnitRequestStillRespectsPool(t *testing.T) {
	// Two pooled bookings fill the type even though unit 103 itself is free.
	cal := NewCalendar(roomType(2), []Hold{
		{Reference: "b1", Range: rng(t, 10, 12)},
		{Reference: "b2", Range: rng(t, 10, 12)},
	})
	assert.ErrorIs(t, cal.Check(Request{Range: rng(t, 10, 11), UnitID: "103"}), ErrCapacityExhausted)
}

func TestOccupancyPerNight(t *testing.T) {
	cal := NewCalendar(roomType(2), []Hold{
		{Reference: "b1", UnitID: "101", Range: rng(t, 10, 12)},
		{Reference: "b2", Range: rng(t, 11, 13)},
	})
	nights := cal.Occupancy(rng(t, 10, 14))
	require.Len(t, nights, 4)

	assert.Equal(t, 1, nights[0].Booked)
	assert.Equal(t, []inventory.RoomUnitID{"101"}, nights[0].Units)
	assert.Equal(t, 2, nights[1].Booked)
	assert.Equal(t, 0, nights[1].Remaining)
	assert.Equal(t, 1, nights[2].Booked)
	assert.Equal(t, 2, nights[3].Remaining)
}
