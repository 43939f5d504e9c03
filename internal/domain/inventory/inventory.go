package inventory

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/fault"
)

var (
	ErrRoomTypeNotFound   = fault.New(fault.KindNotFound, "inventory: room type not found")
	ErrRoomUnitNotFound   = fault.New(fault.KindNotFound, "inventory: room unit not found")
	ErrInvalidTotalUnits  = fault.New(fault.KindValidation, "inventory: total units must be at least 1")
	ErrTenantRequired     = fault.New(fault.KindValidation, "inventory: tenant id required")
	ErrRoomNumberRequired = fault.New(fault.KindValidation, "inventory: room number required")
	ErrUnitTypeMismatch   = fault.New(fault.KindValidation, "inventory: room unit does not belong to room type")
	ErrInvalidHousekeep   = fault.New(fault.KindValidation, "inventory: unknown housekeeping state")
)

type RoomTypeID string

type RoomUnitID string

// RoomType is a sellable category with pooled inventory. InventoryVersion is
// bumped by every booking written against the type, so concurrent writers
// serialize on it.
type RoomType struct {
	ID               RoomTypeID
	TenantID         string
	Name             string
	TotalUnits       int
	Pricing          pricing.Config
	InventoryVersion int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type NewRoomTypeParams struct {
	ID         RoomTypeID
	TenantID   string
	Name       string
	TotalUnits int
	Pricing    pricing.Config
	Now        time.Time
}

func NewRoomType(p NewRoomTypeParams) (*RoomType, error) {
	if strings.TrimSpace(p.TenantID) == "" {
		return nil, ErrTenantRequired
	}
	if p.TotalUnits < 1 {
		return nil, ErrInvalidTotalUnits
	}
	if err := p.Pricing.Validate(); err != nil {
		return nil, err
	}
	now := p.Now.UTC()
	return &RoomType{
		ID:         p.ID,
		TenantID:   p.TenantID,
		Name:       strings.TrimSpace(p.Name),
		TotalUnits: p.TotalUnits,
		Pricing:    p.Pricing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

type HousekeepingState string

const (
	HousekeepingClean       HousekeepingState = "clean"
	HousekeepingDirty       HousekeepingState = "dirty"
	HousekeepingMaintenance HousekeepingState = "maintenance"
	HousekeepingOccupied    HousekeepingState = "occupied"
)

func (s HousekeepingState) Valid() bool {
	switch s {
	case HousekeepingClean, HousekeepingDirty, HousekeepingMaintenance, HousekeepingOccupied:
		return true
	}
	return false
}

// RoomUnit is one physical room. Its housekeeping state does not affect
// booking availability.
type RoomUnit struct {
	ID           RoomUnitID
	TenantID     string
	RoomTypeID   RoomTypeID
	Number       string
	Housekeeping HousekeepingState
	UpdatedAt    time.Time
}

func NewRoomUnit(id RoomUnitID, tenantID string, roomType RoomTypeID, number string, now time.Time) (*RoomUnit, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, ErrRoomNumberRequired
	}
	return &RoomUnit{
		ID:           id,
		TenantID:     tenantID,
		RoomTypeID:   roomType,
		Number:       number,
		Housekeeping: HousekeepingClean,
		UpdatedAt:    now.UTC(),
	}, nil
}

func (u *RoomUnit) SetHousekeeping(state HousekeepingState, now time.Time) error {
	if !state.Valid() {
		return ErrInvalidHousekeep
	}
	u.Housekeeping = state
	u.UpdatedAt = now.UTC()
	return nil
}

// BelongsTo checks the unit against a room type of the same tenant.
func (u *RoomUnit) BelongsTo(rt *RoomType) bool {
	return rt != nil && u.TenantID == rt.TenantID && u.RoomTypeID == rt.ID
}

type RoomTypeRepository interface {
	ByID(ctx context.Context, tenantID string, id RoomTypeID) (*RoomType, error)
	Save(ctx context.Context, rt *RoomType) error
	// ClaimInventory bumps InventoryVersion only if it still equals rt's value,
	// failing with fault.ErrConcurrentUpdate otherwise.
	ClaimInventory(ctx context.Context, rt *RoomType) error
}

type RoomUnitRepository interface {
	ByID(ctx context.Context, tenantID string, id RoomUnitID) (*RoomUnit, error)
	Save(ctx context.Context, unit *RoomUnit) error
	ListByRoomType(ctx context.Context, tenantID string, roomType RoomTypeID) ([]*RoomUnit, error)
}
