package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/pricing"
)

func TestNewRoomTypeValidates(t *testing.T) {
	_, err := NewRoomType(NewRoomTypeParams{ID: "std", TenantID: "t1", TotalUnits: 0})
	assert.ErrorIs(t, err, ErrInvalidTotalUnits)

	_, err = NewRoomType(NewRoomTypeParams{ID: "std", TotalUnits: 1})
	assert.ErrorIs(t, err, ErrTenantRequired)

	_, err = NewRoomType(NewRoomTypeParams{ID: "std", TenantID: "t1", TotalUnits: 1, Pricing: pricing.Config{BasePrice: -1}})
	assert.ErrorIs(t, err, pricing.ErrNegativePrice)

	rt, err := NewRoomType(NewRoomTypeParams{ID: "std", TenantID: "t1", Name: " Standard ", TotalUnits: 4, Now: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "Standard", rt.Name)
	assert.Zero(t, rt.InventoryVersion)
}

func TestRoomUnitHousekeeping(t *testing.T) {
	u, err := NewRoomUnit("u1", "t1", "std", "101", time.Now())
	require.NoError(t, err)
	assert.Equal(t, HousekeepingClean, u.Housekeeping)

	require.NoError(t, u.SetHousekeeping(HousekeepingMaintenance, time.Now()))
	assert.Equal(t, HousekeepingMaintenance, u.Housekeeping)
	assert.ErrorIs(t, u.SetHousekeeping("flooded", time.Now()), ErrInvalidHousekeep)

	_, err = NewRoomUnit("u2", "t1", "std", "", time.Now())
	assert.ErrorIs(t, err, ErrRoomNumberRequired)
}

func TestRoomUnitBelongsTo(t *testing.T) {
	u := &RoomUnit{TenantID: "t1", RoomTypeID: "std"}
	assert.True(t, u.BelongsTo(&RoomType{ID: "std", TenantID: "t1"}))
	assert.False(t, u.BelongsTo(&RoomType{ID: "std", TenantID: "t2"}))
	assert.False(t, u.BelongsTo(&RoomType{ID: "suite", TenantID: "t1"}))
	assert.False(t, u.BelongsTo(nil))
}
