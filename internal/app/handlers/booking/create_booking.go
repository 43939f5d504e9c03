package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domaininventory "staybook/internal/domain/inventory"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/fault"
)

const createBookingKey = "booking.create"

// ErrInventoryContended is returned when concurrent bookings on the same room
// type kept invalidating this one's write-time check.
var ErrInventoryContended = fault.New(fault.KindConflict, "booking: inventory changed concurrently, retry later")

type GuestInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

type CreateBookingCommand struct {
	TenantID        string     `validate:"required"`
	RoomTypeID      string     `validate:"required"`
	RoomUnitID      string
	CheckIn         time.Time  `validate:"required"`
	CheckOut        time.Time  `validate:"required"`
	Guest           GuestInput
	Guests          int        `validate:"gte=1"`
	Channel         string     `validate:"required,oneof=storefront front_desk admin"`
	AmountPaid      int64      `validate:"gte=0"`
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string            { return createBookingKey }
func (c CreateBookingCommand) Tenant() string         { return c.TenantID }
func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c CreateBookingCommand) ResultPrototype() any   { return &dto.BookingCreated{} }
func (c CreateBookingCommand) ContentionError() error { return ErrInventoryContended }

// bookingID is stable for a given idempotency key, so a retried request finds
// the booking its first attempt wrote.
func (c CreateBookingCommand) bookingID() domainbooking.BookingID {
	if c.IdempotencyKeyV == "" {
		return domainbooking.BookingID(uuid.NewString())
	}
	return domainbooking.BookingID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("staybook:booking:"+c.TenantID+":"+c.IdempotencyKeyV)).String())
}

// CreateBookingHandler re-validates availability, prices the stay and
// persists the booking in one unit of work.
type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Audit      policies.AuditSink
	Logger     *slog.Logger
	Attempts   int
	Now        func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.BookingCreated, error) {
	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	id := cmd.bookingID()
	var result *dto.BookingCreated
	err = uow.Execute(ctx, h.UoWFactory, h.Attempts, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.Bookings().ByID(ctx, cmd.TenantID, id)
		switch {
		case err == nil:
			result = dto.MapBookingCreated(existing)
			return nil
		case !errors.Is(err, domainbooking.ErrBookingNotFound):
			return err
		}
		b, err := h.place(ctx, unit, cmd, id, dr)
		if err != nil {
			return err
		}
		created := dto.MapBookingCreated(b)
		result = created
		uow.AfterCommit(ctx, func(ctx context.Context) { h.recordCreated(ctx, cmd, created) })
		return nil
	})
	if err != nil {
		if errors.Is(err, uow.ErrRetriesExhausted) {
			err = errors.Join(ErrInventoryContended, err)
		}
		if fault.Is(err, fault.KindConflict) {
			h.logger().InfoContext(ctx, "booking rejected", "tenant_id", cmd.TenantID, "room_type_id", cmd.RoomTypeID, "error", err)
		}
		return nil, err
	}
	return result, nil
}

func (h *CreateBookingHandler) recordCreated(ctx context.Context, cmd CreateBookingCommand, created *dto.BookingCreated) {
	h.logger().InfoContext(ctx, "booking created", "tenant_id", cmd.TenantID, "booking_id", created.BookingID, "status", created.Status)
	policies.Audit(ctx, h.Audit, h.logger(), policies.AuditRecord{
		Action:   "booking.created",
		TenantID: cmd.TenantID,
		Subject:  created.BookingID,
		Details: map[string]any{
			"room_type_id": created.RoomTypeID,
			"room_unit_id": created.RoomUnitID,
			"check_in":     created.CheckIn,
			"check_out":    created.CheckOut,
			"total":        created.Total.Amount,
			"channel":      cmd.Channel,
		},
	})
}

func (h *CreateBookingHandler) place(ctx context.Context, unit uow.UnitOfWork, cmd CreateBookingCommand, id domainbooking.BookingID, dr daterange.DateRange) (*domainbooking.Booking, error) {
	rt, err := unit.RoomTypes().ByID(ctx, cmd.TenantID, domaininventory.RoomTypeID(cmd.RoomTypeID))
	if err != nil {
		return nil, err
	}
	if _, err := availabilityapp.ResolveUnit(ctx, unit, rt, cmd.RoomUnitID); err != nil {
		return nil, err
	}
	quote := pricing.PriceStay(rt.Pricing, dr)
	if err := quote.RequireConfigured(); err != nil {
		return nil, err
	}

	now := h.now()
	cal, err := availabilityapp.LoadCalendar(ctx, unit, rt, dr)
	if err != nil {
		return nil, err
	}
	req := domainavailability.Request{Range: dr, UnitID: domaininventory.RoomUnitID(cmd.RoomUnitID)}
	if err := cal.Reserve(req, string(id), now); err != nil {
		return nil, err
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         id,
		TenantID:   cmd.TenantID,
		RoomTypeID: rt.ID,
		RoomUnitID: domaininventory.RoomUnitID(cmd.RoomUnitID),
		Guest:      domainbooking.Guest{Name: cmd.Guest.Name, Email: cmd.Guest.Email, Phone: cmd.Guest.Phone},
		Guests:     cmd.Guests,
		Channel:    domainbooking.Channel(cmd.Channel),
		Quote:      quote,
		AmountPaid: cmd.AmountPaid,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	// Claiming the room type makes two writers of overlapping checks collide.
	if err := unit.RoomTypes().ClaimInventory(ctx, rt); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), b.Drain()); err != nil {
		return nil, err
	}
	return b, nil
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CreateBookingCommand, *dto.BookingCreated] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
var _ middleware.ContendedCommand = CreateBookingCommand{}
