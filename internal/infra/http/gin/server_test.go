package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/engine"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/fault"
	"staybook/internal/infra/fixtures"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/validation"
)

const tenant = "seaside-inn"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	factory := memory.Factory{Store: store}
	eng := engine.New(engine.Deps{
		UoWFactory:  factory,
		Outbox:      memory.NewOutbox(store, nil, nil),
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Validator:   validation.New(),
	})
	seed := fixtures.File{
		RoomTypes: []fixtures.RoomType{{ID: "twin", TenantID: tenant, Name: "Twin", TotalUnits: 1, Pricing: pricing.Config{BasePrice: 7500}}},
		Wallets:   []fixtures.Wallet{{TenantID: tenant, Credits: 100}},
	}
	require.NoError(t, fixtures.Seed(context.Background(), factory, eng, seed, "USD", nil))

	mw := obs.Middleware{}
	return NewRouter(mw, obs.HealthHandlers{}, NewHandlers(eng, mw))
}

func do(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(obs.HeaderTenantID, tenant)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fault.Validation("bad"), http.StatusBadRequest},
		{fault.New(fault.KindNotFound, "missing"), http.StatusNotFound},
		{fault.New(fault.KindConflict, "taken"), http.StatusConflict},
		{fault.New(fault.KindInsufficientBalance, "poor"), http.StatusPaymentRequired},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestBookingFlow(t *testing.T) {
	r := newTestRouter(t)
	booking := map[string]any{
		"room_type_id": "twin",
		"check_in":     "2025-03-10",
		"check_out":    "2025-03-12",
		"guest":        map[string]any{"name": "Ana"},
		"guests":       2,
		"channel":      "front_desk",
	}

	rec := do(t, r, http.MethodGet, "/api/v1/room-types/twin/quote?check_in=2025-03-10&check_out=2025-03-12", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	subtotal := decode(t, rec)["subtotal"].(map[string]any)
	assert.EqualValues(t, 15000, subtotal["amount"])

	rec = do(t, r, http.MethodPost, "/api/v1/bookings", booking, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "confirmed", decode(t, rec)["status"])

	rec = do(t, r, http.MethodPost, "/api/v1/bookings", booking, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(fault.KindConflict), decode(t, rec)["kind"])

	rec = do(t, r, http.MethodGet, "/api/v1/room-types/twin/availability?check_in=2025-03-11&check_out=2025-03-13", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["available"])

	rec = do(t, r, http.MethodGet, "/api/v1/room-types/twin/calendar?from=2025-03-10&to=2025-03-12", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["nights"], 2)

	rec = do(t, r, http.MethodGet, "/api/v1/room-types/ghost/availability?check_in=2025-03-11&check_out=2025-03-13", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/room-types/twin/availability?check_in=10-03-2025&check_out=2025-03-13", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/wallet/debit", map[string]any{"amount": 80, "reason": "sms"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 20, decode(t, rec)["remaining_balance"])

	rec = do(t, r, http.MethodPost, "/api/v1/wallet/debit", map[string]any{"amount": 50, "reason": "sms"}, nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/wallet/credit", map[string]any{"amount": 30, "reason": "top-up", "external_ref": "inv-1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodPost, "/api/v1/wallet/credit", map[string]any{"amount": 30, "reason": "top-up", "external_ref": "inv-1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["replayed"])

	rec = do(t, r, http.MethodGet, "/api/v1/wallet", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 50, decode(t, rec)["balance"])

	rec = do(t, r, http.MethodGet, "/api/v1/wallet/entries?limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 2)

	rec = do(t, r, http.MethodGet, "/api/v1/wallet/entries?limit=501", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/wallet/reconciliation", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["consistent"])

	rec = do(t, r, http.MethodPost, "/api/v1/wallet/debit", map[string]any{"amount": 0, "reason": "sms"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownTenantWallet(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/api/v1/wallet", nil, map[string]string{obs.HeaderTenantID: "elsewhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/wallet", nil, map[string]string{obs.HeaderTenantID: "elsewhere"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/v1/wallet", nil, map[string]string{obs.HeaderTenantID: "elsewhere"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["balance"])
}

func TestMissingTenantHeader(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
