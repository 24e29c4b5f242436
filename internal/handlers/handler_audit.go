package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/SscSPs/ledger_service/internal/dto"
	"github.com/SscSPs/ledger_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.AuditRecorderSvc
}

func newAuditHandler(as portssvc.AuditRecorderSvc) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers the read-only audit trail routes.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditRecorderSvc) {
	h := newAuditHandler(auditService)

	audit := rg.Group("/audit-trail")
	{
		audit.GET("", h.getAuditTrail)
		audit.GET("/verify", h.verifyAuditTrail)
	}
}

// getAuditTrail godoc
// @Summary Query the audit trail
// @Description Returns audit records newest first, optionally filtered by table, record or user
// @Tags audit
// @Produce json
// @Param tableName query string false "Table name" Enums(accounts, transactions, account_balances)
// @Param recordId query string false "Record ID"
// @Param userId query string false "User ID"
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.ListAuditResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal error"
// @Security BearerAuth
// @Router /audit-trail [get]
func (h *auditHandler) getAuditTrail(c *gin.Context) {
	var params dto.ListAuditParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "getAuditTrail")
		return
	}

	entries, err := h.auditService.Query(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondError(c, err, "getAuditTrail")
		return
	}

	c.JSON(http.StatusOK, dto.ListAuditResponse{
		Entries: dto.ToAuditEntryResponses(entries),
		Page:    params.Page,
		Limit:   params.Limit,
	})
}

// verifyAuditTrail godoc
// @Summary Verify audit checksums
// @Description Recomputes the checksum of each audit record on the page and lists the records that no longer match
// @Tags audit
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.AuditVerificationResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal error"
// @Security BearerAuth
// @Router /audit-trail/verify [get]
func (h *auditHandler) verifyAuditTrail(c *gin.Context) {
	var params dto.ListAuditParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "verifyAuditTrail")
		return
	}

	result, err := h.auditService.Verify(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err, "verifyAuditTrail")
		return
	}

	if len(result.Mismatched) > 0 {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Audit verification found mismatches",
			slog.Int("mismatched", len(result.Mismatched)))
	}
	c.JSON(http.StatusOK, dto.ToAuditVerificationResponse(result))
}
