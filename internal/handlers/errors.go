package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_service/internal/apperrors"
	"github.com/SscSPs/ledger_service/internal/core/domain"
	"github.com/SscSPs/ledger_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// retryAfterSeconds is advertised on retryable storage failures.
const retryAfterSeconds = "1"

// respondError maps a service error onto the HTTP response. Only caller-safe messages are
// sent; the full error, including any storage detail, is logged.
func respondError(c *gin.Context, err error, op string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("op", op))

	var unbalanced *apperrors.UnbalancedEntriesError
	if errors.As(err, &unbalanced) {
		logger.Warn("Unbalanced transaction rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":        err.Error(),
			"totalDebits":  domain.FormatAmount(unbalanced.TotalDebits),
			"totalCredits": domain.FormatAmount(unbalanced.TotalCredits),
		})
		return
	}

	status := errorStatus(err)
	switch {
	case status == http.StatusServiceUnavailable:
		logger.Error("Storage failure, unit of work rolled back", slog.String("error", err.Error()))
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(status, gin.H{"error": "temporarily unavailable", "retryable": true})
	case status >= http.StatusInternalServerError:
		logger.Error("Unexpected error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": apperrors.PublicMessage(err)})
	}
}

// errorStatus prefers the status an AppError was classified with, then the sentinel kind.
func errorStatus(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case apperrors.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondBindError answers a request that failed binding or struct validation.
func respondBindError(c *gin.Context, err error, op string) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request",
		slog.String("op", op), slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
