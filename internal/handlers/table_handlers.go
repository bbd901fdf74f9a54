package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TableHandler holds the table and order services. Orders are needed
// for the current-open-order lookup.
type TableHandler struct {
	tableService services.TableService
	orderService services.OrderService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(ts services.TableService, os services.OrderService) *TableHandler {
	return &TableHandler{tableService: ts, orderService: os}
}

// GetTables lists tables with optional number/available filters.
func (h *TableHandler) GetTables(c *gin.Context) {
	opts := models.TableListOptions{ListOptions: ParseListOptions(c)}

	if numberStr := c.Query("number"); numberStr != "" {
		if number, err := strconv.ParseInt(numberStr, 10, 64); err == nil {
			opts.Number = &number
		}
	}
	if available := strings.TrimSpace(c.Query("available")); available != "" {
		opts.Available = &available
	}

	tables, total, err := h.tableService.GetTables(opts)
	if err != nil {
		respondServiceError(c, err, "GetTables")
		return
	}
	utils.RespondOK(c, http.StatusOK, "tables", listData(tables, total, opts.ListOptions))
}

// GetTable returns a single table.
func (h *TableHandler) GetTable(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	table, err := h.tableService.GetTableByID(tableID)
	if err != nil {
		respondServiceError(c, err, "GetTable")
		return
	}
	utils.RespondOK(c, http.StatusOK, "table", table)
}

// CreateTable adds a table to the floor plan.
func (h *TableHandler) CreateTable(c *gin.Context) {
	var req services.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	table, err := h.tableService.CreateTable(req)
	if err != nil {
		respondServiceError(c, err, "CreateTable")
		return
	}
	utils.RespondOK(c, http.StatusCreated, "table created", table)
}

// UpdateTable changes a table's number or availability.
func (h *TableHandler) UpdateTable(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	table, err := h.tableService.UpdateTable(tableID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateTable")
		return
	}
	utils.RespondOK(c, http.StatusOK, "table updated", table)
}

// DeleteTable removes a table.
func (h *TableHandler) DeleteTable(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tableService.DeleteTable(tableID); err != nil {
		respondServiceError(c, err, "DeleteTable")
		return
	}
	utils.RespondOK(c, http.StatusOK, "table deleted", nil)
}

// Seat runs the seat/release/move flow.
func (h *TableHandler) Seat(c *gin.Context) {
	var req services.SeatTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	table, err := h.tableService.Seat(req)
	if err != nil {
		respondServiceError(c, err, "Seat")
		return
	}
	utils.RespondOK(c, http.StatusOK, "table updated", table)
}

// CurrentOrder returns the table's open order, null when the table is
// free.
func (h *TableHandler) CurrentOrder(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOpenOrderForTable(tableID)
	if err != nil {
		respondServiceError(c, err, "CurrentOrder")
		return
	}
	if order == nil {
		utils.RespondOK(c, http.StatusOK, "table is free", nil)
		return
	}
	utils.RespondOK(c, http.StatusOK, "current order", order)
}
