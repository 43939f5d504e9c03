package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	"staybook/internal/domain/shared/fault"
)

var statusByKind = map[fault.Kind]int{
	fault.KindValidation:          http.StatusBadRequest,
	fault.KindNotFound:            http.StatusNotFound,
	fault.KindConflict:            http.StatusConflict,
	fault.KindInsufficientBalance: http.StatusPaymentRequired,
	fault.KindInternal:            http.StatusInternalServerError,
}

// StatusFor maps an engine error onto an HTTP status.
func StatusFor(err error) int {
	if status, ok := statusByKind[fault.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error", "kind"}. Internal failures are logged
// and their message is not exposed.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	kind := fault.KindOf(err)
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "tenant_id", c.GetString("tenant_id"), "error", err)
		}
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg, "kind": string(kind)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": string(fault.KindValidation)})
}

func parseDay(c *gin.Context, name, raw string) (time.Time, bool) {
	if raw == "" {
		badRequest(c, name+" is required")
		return time.Time{}, false
	}
	day, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		badRequest(c, name+" must be a "+dto.DateLayout+" date")
		return time.Time{}, false
	}
	return day, true
}
