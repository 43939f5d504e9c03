package availability

import (
	"context"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domaininventory "staybook/internal/domain/inventory"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

const calendarKey = "availability.calendar"

type CalendarQuery struct {
	TenantID   string    `validate:"required"`
	RoomTypeID string    `validate:"required"`
	From       time.Time `validate:"required"`
	To         time.Time `validate:"required"`
}

func (q CalendarQuery) Key() string    { return calendarKey }
func (q CalendarQuery) Tenant() string { return q.TenantID }

type CalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CalendarHandler) Handle(ctx context.Context, q CalendarQuery) (dto.Calendar, error) {
	dr, err := daterange.New(q.From, q.To)
	if err != nil {
		return dto.Calendar{}, err
	}
	var out dto.Calendar
	err = uow.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		rt, err := unit.RoomTypes().ByID(ctx, q.TenantID, domaininventory.RoomTypeID(q.RoomTypeID))
		if err != nil {
			return err
		}
		cal, err := LoadCalendar(ctx, unit, rt, dr)
		if err != nil {
			return err
		}
		quote := pricing.PriceStay(rt.Pricing, dr)
		out = dto.MapCalendar(cal, cal.Occupancy(dr), quote.Nightly, rt.Pricing.Currency)
		return nil
	})
	if err != nil {
		return dto.Calendar{}, err
	}
	return out, nil
}

var _ queries.Handler[CalendarQuery, dto.Calendar] = (*CalendarHandler)(nil)
