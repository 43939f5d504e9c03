// Package engine assembles the booking engine: command and query buses with
// their middleware, and a typed facade over the six public operations plus
// the supporting calendar and ledger reads.
package engine

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	walletapp "staybook/internal/app/handlers/wallet"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
)

type Deps struct {
	UoWFactory    uow.UoWFactory
	Outbox        outbox.Outbox
	Encoder       outbox.EventEncoder
	Idempotency   middleware.IdempotencyStore
	Validator     middleware.Validator
	Audit         policies.AuditSink
	Logger        *slog.Logger
	WriteAttempts int
	Now           func() time.Time
}

type Engine struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func New(d Deps) *Engine {
	if d.UoWFactory == nil {
		panic("engine: uow factory required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, &bookingapp.CreateBookingHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Audit:      d.Audit,
		Logger:     d.Logger,
		Attempts:   d.WriteAttempts,
		Now:        d.Now,
	})
	ledger := &walletapp.LedgerHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Audit:      d.Audit,
		Logger:     d.Logger,
		Attempts:   d.WriteAttempts,
		Now:        d.Now,
	}
	commands.RegisterHandler(commandBus, ledger.DebitHandler())
	commands.RegisterHandler(commandBus, ledger.CreditHandler())
	commands.RegisterHandler(commandBus, &walletapp.OpenWalletHandler{UoWFactory: d.UoWFactory, Attempts: d.WriteAttempts})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, &availabilityapp.CheckAvailabilityHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, &availabilityapp.PriceStayHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, &availabilityapp.CalendarHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, &walletapp.GetBalanceHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, &walletapp.LedgerHistoryHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, &walletapp.ReconcileHandler{UoWFactory: d.UoWFactory})

	commandMws := []middleware.CommandMiddleware{middleware.Authorization(middleware.TenantGuard{})}
	queryMws := []middleware.QueryMiddleware{middleware.QueryAuthorization(middleware.TenantGuard{})}
	if d.Validator != nil {
		commandMws = append(commandMws, middleware.Validation(d.Validator))
		queryMws = append(queryMws, middleware.QueryValidation(d.Validator))
	}
	if d.Idempotency != nil {
		commandMws = append(commandMws, middleware.Idempotency(d.Idempotency, nil))
	}
	if d.Outbox != nil {
		commandMws = append(commandMws, middleware.OutboxFlush(d.Outbox, d.Logger))
	}
	commandMws = append(commandMws, middleware.Transaction(d.UoWFactory, d.WriteAttempts))

	return &Engine{
		Commands: middleware.ChainCommands(commandBus, commandMws...),
		Queries:  middleware.ChainQueries(queryBus, queryMws...),
	}
}

// CheckAvailability reports whether the stay fits. It is a hint; only
// CreateBooking decides.
func (e *Engine) CheckAvailability(ctx context.Context, q availabilityapp.CheckAvailabilityQuery) (bool, error) {
	res, err := e.Availability(ctx, q)
	return res.Available, err
}

func (e *Engine) Availability(ctx context.Context, q availabilityapp.CheckAvailabilityQuery) (dto.Availability, error) {
	return queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.Availability](ctx, e.Queries, q)
}

func (e *Engine) PriceStay(ctx context.Context, q availabilityapp.PriceStayQuery) (dto.Quote, error) {
	return queries.Ask[availabilityapp.PriceStayQuery, dto.Quote](ctx, e.Queries, q)
}

func (e *Engine) Calendar(ctx context.Context, q availabilityapp.CalendarQuery) (dto.Calendar, error) {
	return queries.Ask[availabilityapp.CalendarQuery, dto.Calendar](ctx, e.Queries, q)
}

func (e *Engine) CreateBooking(ctx context.Context, cmd bookingapp.CreateBookingCommand) (*dto.BookingCreated, error) {
	return commands.Dispatch[bookingapp.CreateBookingCommand, *dto.BookingCreated](ctx, e.Commands, cmd)
}

func (e *Engine) Debit(ctx context.Context, cmd walletapp.DebitCommand) (*dto.LedgerResult, error) {
	return commands.Dispatch[walletapp.DebitCommand, *dto.LedgerResult](ctx, e.Commands, cmd)
}

func (e *Engine) Credit(ctx context.Context, cmd walletapp.CreditCommand) (*dto.LedgerResult, error) {
	return commands.Dispatch[walletapp.CreditCommand, *dto.LedgerResult](ctx, e.Commands, cmd)
}

func (e *Engine) OpenWallet(ctx context.Context, cmd walletapp.OpenWalletCommand) (*dto.Balance, error) {
	return commands.Dispatch[walletapp.OpenWalletCommand, *dto.Balance](ctx, e.Commands, cmd)
}

// GetBalance returns the tenant's current credits.
func (e *Engine) GetBalance(ctx context.Context, tenantID string) (int64, error) {
	res, err := queries.Ask[walletapp.GetBalanceQuery, *dto.Balance](ctx, e.Queries, walletapp.GetBalanceQuery{TenantID: tenantID})
	if err != nil {
		return 0, err
	}
	return res.Balance, nil
}

func (e *Engine) LedgerHistory(ctx context.Context, q walletapp.LedgerHistoryQuery) (dto.LedgerHistory, error) {
	return queries.Ask[walletapp.LedgerHistoryQuery, dto.LedgerHistory](ctx, e.Queries, q)
}

func (e *Engine) Reconcile(ctx context.Context, q walletapp.ReconcileQuery) (dto.Reconciliation, error) {
	return queries.Ask[walletapp.ReconcileQuery, dto.Reconciliation](ctx, e.Queries, q)
}
