package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	walletapp "staybook/internal/app/handlers/wallet"
)

type WalletHandler struct {
	Engine Engine
	Logger *slog.Logger
}

type ledgerRequest struct {
	Amount      int64  `json:"amount"`
	Reason      string `json:"reason"`
	Actor       string `json:"actor"`
	ExternalRef string `json:"external_ref"`
}

func (h WalletHandler) Open(c *gin.Context) {
	result, err := h.Engine.OpenWallet(c.Request.Context(), walletapp.OpenWalletCommand{TenantID: c.GetString("tenant_id")})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h WalletHandler) Balance(c *gin.Context) {
	tenant := c.GetString("tenant_id")
	balance, err := h.Engine.GetBalance(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant_id": tenant, "balance": balance})
}

func (h WalletHandler) Debit(c *gin.Context) {
	var req ledgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.Engine.Debit(c.Request.Context(), walletapp.DebitCommand{
		TenantID:        c.GetString("tenant_id"),
		Amount:          req.Amount,
		Reason:          req.Reason,
		Actor:           req.Actor,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h WalletHandler) Credit(c *gin.Context) {
	var req ledgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.Engine.Credit(c.Request.Context(), walletapp.CreditCommand{
		TenantID:        c.GetString("tenant_id"),
		Amount:          req.Amount,
		Reason:          req.Reason,
		Actor:           req.Actor,
		ExternalRef:     req.ExternalRef,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h WalletHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}
	result, err := h.Engine.LedgerHistory(c.Request.Context(), walletapp.LedgerHistoryQuery{
		TenantID: c.GetString("tenant_id"),
		Limit:    limit,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h WalletHandler) Reconcile(c *gin.Context) {
	result, err := h.Engine.Reconcile(c.Request.Context(), walletapp.ReconcileQuery{TenantID: c.GetString("tenant_id")})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ WalletHTTP = WalletHandler{}
