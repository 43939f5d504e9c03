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

const priceStayKey = "availability.price_stay"

type PriceStayQuery struct {
	TenantID   string    `validate:"required"`
	RoomTypeID string    `validate:"required"`
	CheckIn    time.Time `validate:"required"`
	CheckOut   time.Time `validate:"required"`
}

func (q PriceStayQuery) Key() string    { return priceStayKey }
func (q PriceStayQuery) Tenant() string { return q.TenantID }

// PriceStayHandler prices every night of the stay. It never writes.
type PriceStayHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *PriceStayHandler) Handle(ctx context.Context, q PriceStayQuery) (dto.Quote, error) {
	dr, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Quote{}, err
	}
	var quote pricing.Quote
	err = uow.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		rt, err := unit.RoomTypes().ByID(ctx, q.TenantID, domaininventory.RoomTypeID(q.RoomTypeID))
		if err != nil {
			return err
		}
		quote = pricing.PriceStay(rt.Pricing, dr)
		return quote.RequireConfigured()
	})
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(q.RoomTypeID, quote), nil
}

var _ queries.Handler[PriceStayQuery, dto.Quote] = (*PriceStayHandler)(nil)
