package availability

import (
	"context"
	"errors"
	"fmt"

	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domaininventory "staybook/internal/domain/inventory"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/fault"
)

// LoadCalendar builds the capacity view of rt from the blocking bookings that
// overlap dr.
func LoadCalendar(ctx context.Context, unit uow.UnitOfWork, rt *domaininventory.RoomType, dr daterange.DateRange) (*domainavailability.Calendar, error) {
	overlapping, err := unit.Bookings().Overlapping(ctx, rt.TenantID, rt.ID, dr)
	if err != nil {
		return nil, fmt.Errorf("availability: load bookings: %w", err)
	}
	holds := make([]domainavailability.Hold, 0, len(overlapping))
	for _, b := range overlapping {
		if !b.Status.BlocksInventory() {
			continue
		}
		holds = append(holds, b.Hold())
	}
	return domainavailability.NewCalendar(rt, holds), nil
}

// ResolveUnit loads a requested room unit and checks it belongs to rt. An
// unknown unit is a caller mistake, not a missing resource.
func ResolveUnit(ctx context.Context, unit uow.UnitOfWork, rt *domaininventory.RoomType, id string) (*domaininventory.RoomUnit, error) {
	if id == "" {
		return nil, nil
	}
	ru, err := unit.RoomUnits().ByID(ctx, rt.TenantID, domaininventory.RoomUnitID(id))
	if err != nil {
		if errors.Is(err, domaininventory.ErrRoomUnitNotFound) {
			return nil, fault.Wrap(fault.KindValidation, "availability: unknown room unit", err)
		}
		return nil, err
	}
	if !ru.BelongsTo(rt) {
		return nil, domaininventory.ErrUnitTypeMismatch
	}
	return ru, nil
}
