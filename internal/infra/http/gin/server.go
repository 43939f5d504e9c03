package ginserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	walletapp "staybook/internal/app/handlers/wallet"
	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

// Engine is the slice of the booking engine the HTTP adapter drives.
type Engine interface {
	Availability(ctx context.Context, q availabilityapp.CheckAvailabilityQuery) (dto.Availability, error)
	PriceStay(ctx context.Context, q availabilityapp.PriceStayQuery) (dto.Quote, error)
	Calendar(ctx context.Context, q availabilityapp.CalendarQuery) (dto.Calendar, error)
	CreateBooking(ctx context.Context, cmd bookingapp.CreateBookingCommand) (*dto.BookingCreated, error)
	OpenWallet(ctx context.Context, cmd walletapp.OpenWalletCommand) (*dto.Balance, error)
	GetBalance(ctx context.Context, tenantID string) (int64, error)
	Debit(ctx context.Context, cmd walletapp.DebitCommand) (*dto.LedgerResult, error)
	Credit(ctx context.Context, cmd walletapp.CreditCommand) (*dto.LedgerResult, error)
	LedgerHistory(ctx context.Context, q walletapp.LedgerHistoryQuery) (dto.LedgerHistory, error)
	Reconcile(ctx context.Context, q walletapp.ReconcileQuery) (dto.Reconciliation, error)
}

type BookingHTTP interface {
	Create(c *gin.Context)
}

type AvailabilityHTTP interface {
	Check(c *gin.Context)
	Quote(c *gin.Context)
	Calendar(c *gin.Context)
}

type WalletHTTP interface {
	Open(c *gin.Context)
	Balance(c *gin.Context)
	Debit(c *gin.Context)
	Credit(c *gin.Context)
	History(c *gin.Context)
	Reconcile(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Wallet       WalletHTTP
}

// NewHandlers binds every route group to eng.
func NewHandlers(eng Engine, obsMW obs.Middleware) Handlers {
	return Handlers{
		Booking:      BookingHandler{Engine: eng, Logger: obsMW.Logger},
		Availability: AvailabilityHandler{Engine: eng, Logger: obsMW.Logger},
		Wallet:       WalletHandler{Engine: eng, Logger: obsMW.Logger},
	}
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", obs.HeaderTenantID, obs.HeaderRequestID},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.HeaderRequestID,
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1", obsMW.Tenant())
	if h.Availability != nil {
		api.GET("/room-types/:id/availability", h.Availability.Check)
		api.GET("/room-types/:id/quote", h.Availability.Quote)
		api.GET("/room-types/:id/calendar", h.Availability.Calendar)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
	}
	if h.Wallet != nil {
		walletGroup := api.Group("/wallet")
		walletGroup.POST("", h.Wallet.Open)
		walletGroup.GET("", h.Wallet.Balance)
		walletGroup.POST("/debit", h.Wallet.Debit)
		walletGroup.POST("/credit", h.Wallet.Credit)
		walletGroup.GET("/entries", h.Wallet.History)
		walletGroup.GET("/reconciliation", h.Wallet.Reconcile)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
