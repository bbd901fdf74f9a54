package handlers

import (
	"net/http"

	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TransactionHandler holds the transaction service.
type TransactionHandler struct {
	transactionService services.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ts services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: ts}
}

// Checkout closes an open order and records the payment.
func (h *TransactionHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondFail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	transaction, err := h.transactionService.Checkout(userID, req)
	if err != nil {
		respondServiceError(c, err, "Checkout")
		return
	}
	utils.RespondOK(c, http.StatusCreated, "checkout complete", transaction)
}

// GetTransactions lists recorded payments.
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	opts := ParseListOptions(c)

	transactions, total, err := h.transactionService.GetTransactions(opts)
	if err != nil {
		respondServiceError(c, err, "GetTransactions")
		return
	}
	utils.RespondOK(c, http.StatusOK, "transactions", listData(transactions, total, opts))
}

// GetTransaction returns one payment record.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		respondServiceError(c, err, "GetTransaction")
		return
	}
	utils.RespondOK(c, http.StatusOK, "transaction", transaction)
}

// DeleteTransaction removes a payment record.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(transactionID); err != nil {
		respondServiceError(c, err, "DeleteTransaction")
		return
	}
	utils.RespondOK(c, http.StatusOK, "transaction deleted", nil)
}

// Export streams the transaction ledger as a spreadsheet.
func (h *TransactionHandler) Export(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}

	data, err := h.transactionService.ExportTransactions(format)
	if err != nil {
		respondServiceError(c, err, "ExportTransactions")
		return
	}
	serveExport(c, format, "transactions", data)
}

// Import replays an exported transaction ledger.
func (h *TransactionHandler) Import(c *gin.Context) {
	file, format, ok := importUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	imported, err := h.transactionService.ImportTransactions(format, file)
	if err != nil {
		respondServiceError(c, err, "ImportTransactions")
		return
	}
	utils.RespondOK(c, http.StatusOK, "transactions imported", gin.H{"imported": imported})
}
