package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/SscSPs/ledger_service/internal/dto"
	"github.com/SscSPs/ledger_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests related to ledger transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.POST("/:transactionID/reverse", h.reverseTransaction)
	}
}

// createTransaction godoc
// @Summary Post a balanced transaction
// @Description Validates that total debits equal total credits and commits the transaction, its entries, balance updates and audit records atomically
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction with its entries"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]interface{} "Validation error; unbalanced transactions include totalDebits and totalCredits"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Referenced account not found"
// @Failure 503 {object} map[string]interface{} "Storage failure, safe to retry"
// @Failure 500 {object} map[string]string "Internal error"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "createTransaction")
		return
	}

	domainReq, err := req.ToDomain()
	if err != nil {
		respondError(c, err, "createTransaction")
		return
	}

	actorID := middleware.ActorFromContext(c)
	logger.Info("Received request to create transaction",
		slog.String("type", req.Type), slog.Int("entry_count", len(req.Entries)))

	posted, err := h.transactionService.CreateTransaction(c.Request.Context(), domainReq, actorID)
	if err != nil {
		respondError(c, err, "createTransaction")
		return
	}

	logger.Info("Transaction created successfully", slog.String("transaction_id", posted.Transaction.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(posted))
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Retrieves a transaction and its entries in submission order
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Internal error"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	transactionID := c.Param("transactionID")

	posted, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, err, "getTransaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(posted))
}

// reverseTransaction godoc
// @Summary Reverse a transaction
// @Description Posts a new transaction that offsets the original one. The original is never modified and can only be reversed once.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID to reverse"
// @Param   reversal body dto.ReverseTransactionRequest false "Optional description"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Already reversed or not reversible"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 503 {object} map[string]interface{} "Storage failure, safe to retry"
// @Failure 500 {object} map[string]string "Internal error"
// @Security BearerAuth
// @Router /transactions/{transactionID}/reverse [post]
func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.ReverseTransactionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err, "reverseTransaction")
			return
		}
	}

	actorID := middleware.ActorFromContext(c)
	logger = logger.With(slog.String("original_transaction_id", transactionID))
	logger.Info("Received request to reverse transaction")

	posted, err := h.transactionService.ReverseTransaction(c.Request.Context(), transactionID, req.Description, actorID)
	if err != nil {
		respondError(c, err, "reverseTransaction")
		return
	}

	logger.Info("Transaction reversed successfully", slog.String("reversal_transaction_id", posted.Transaction.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(posted))
}
