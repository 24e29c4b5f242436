package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/SscSPs/ledger_service/internal/dto"
	"github.com/SscSPs/ledger_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

type balanceHandler struct {
	balanceService portssvc.BalanceMaintainerSvc
}

func newBalanceHandler(bs portssvc.BalanceMaintainerSvc) *balanceHandler {
	return &balanceHandler{balanceService: bs}
}

// registerBalanceRoutes registers the balance routes under an account.
func registerBalanceRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceMaintainerSvc) {
	h := newBalanceHandler(balanceService)

	balance := rg.Group("/accounts/:accountID/balance")
	{
		balance.GET("", h.getAccountBalance)
		balance.POST("/reconcile", h.reconcileBalance)
	}
}

// getAccountBalance godoc
// @Summary Get an account balance
// @Description Returns the maintained debit, credit and net balance of an account, optionally for one user. Keys without activity report zeros.
// @Tags balances
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   userId query string false "User ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Internal error"
// @Security BearerAuth
// @Router /accounts/{accountID}/balance [get]
func (h *balanceHandler) getAccountBalance(c *gin.Context) {
	var params dto.BalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "getAccountBalance")
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), c.Param("accountID"), params.UserIDPtr())
	if err != nil {
		respondError(c, err, "getAccountBalance")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(balance))
}

// reconcileBalance godoc
// @Summary Rebuild a balance from its ledger entries
// @Description Replays every ledger entry of the account (and user) and overwrites the maintained balance. Drift is reported and audited.
// @Tags balances
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   userId query string false "User ID"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 503 {object} map[string]interface{} "Storage failure, safe to retry"
// @Failure 500 {object} map[string]string "Internal error"
// @Security BearerAuth
// @Router /accounts/{accountID}/balance/reconcile [post]
func (h *balanceHandler) reconcileBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.BalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "reconcileBalance")
		return
	}

	result, err := h.balanceService.ReconcileBalance(c.Request.Context(), accountID, params.UserIDPtr(), middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err, "reconcileBalance")
		return
	}

	logger.Info("Balance reconciled", slog.String("account_id", accountID), slog.Bool("drifted", result.HasDrift()))
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(result))
}
