package availability

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domaininventory "staybook/internal/domain/inventory"
	"staybook/internal/domain/shared/daterange"
)

const checkAvailabilityKey = "availability.check"

// CheckAvailabilityQuery asks whether a stay fits the room type's inventory.
// The answer is a hint; CreateBooking re-validates at write time.
type CheckAvailabilityQuery struct {
	TenantID         string    `validate:"required"`
	RoomTypeID       string    `validate:"required"`
	RoomUnitID       string
	CheckIn          time.Time `validate:"required"`
	CheckOut         time.Time `validate:"required"`
	ExcludeBookingID string
}

func (q CheckAvailabilityQuery) Key() string    { return checkAvailabilityKey }
func (q CheckAvailabilityQuery) Tenant() string { return q.TenantID }

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	dr, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Availability{}, err
	}
	var out dto.Availability
	err = uow.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		rt, err := unit.RoomTypes().ByID(ctx, q.TenantID, domaininventory.RoomTypeID(q.RoomTypeID))
		if err != nil {
			return err
		}
		if _, err := ResolveUnit(ctx, unit, rt, q.RoomUnitID); err != nil {
			return err
		}
		cal, err := LoadCalendar(ctx, unit, rt, dr)
		if err != nil {
			return err
		}
		req := domainavailability.Request{
			Range:            dr,
			UnitID:           domaininventory.RoomUnitID(q.RoomUnitID),
			ExcludeReference: q.ExcludeBookingID,
		}
		out = dto.Availability{
			RoomTypeID:  string(rt.ID),
			RoomUnitID:  q.RoomUnitID,
			TotalUnits:  rt.TotalUnits,
			Overlapping: len(cal.Overlapping(req)),
			Available:   true,
		}
		if err := cal.Check(req); err != nil {
			if !errors.Is(err, domainavailability.ErrCapacityExhausted) && !errors.Is(err, domainavailability.ErrUnitUnavailable) {
				return err
			}
			out.Available = false
			out.Reason = err.Error()
		}
		return nil
	})
	if err != nil {
		return dto.Availability{}, err
	}
	return out, nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
