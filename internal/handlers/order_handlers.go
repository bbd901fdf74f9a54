package handlers

import (
	"net/http"

	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// PlaceOrder opens or extends the table's order with new line items.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondFail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.PlaceOrder(userID, req)
	if err != nil {
		respondServiceError(c, err, "PlaceOrder")
		return
	}
	utils.RespondOK(c, http.StatusCreated, "order placed", order)
}

// GetOrders lists orders.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	opts := ParseListOptions(c)

	orders, total, err := h.orderService.GetOrders(opts)
	if err != nil {
		respondServiceError(c, err, "GetOrders")
		return
	}
	utils.RespondOK(c, http.StatusOK, "orders", listData(orders, total, opts))
}

// GetOrder returns one order with its line items.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		respondServiceError(c, err, "GetOrder")
		return
	}
	utils.RespondOK(c, http.StatusOK, "order", order)
}

// KitchenQueue lists the unserved line items of every open order.
func (h *OrderHandler) KitchenQueue(c *gin.Context) {
	queue, err := h.orderService.KitchenQueue()
	if err != nil {
		respondServiceError(c, err, "KitchenQueue")
		return
	}
	utils.RespondOK(c, http.StatusOK, "kitchen queue", queue)
}

// DeleteOrder removes an order and frees its table if still open.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(orderID); err != nil {
		respondServiceError(c, err, "DeleteOrder")
		return
	}
	utils.RespondOK(c, http.StatusOK, "order deleted", nil)
}

// ServeDetail marks a line item served.
func (h *OrderHandler) ServeDetail(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detailID, ok := parseIDParam(c, "detailId")
	if !ok {
		return
	}

	order, err := h.orderService.ServeDetail(orderID, detailID)
	if err != nil {
		respondServiceError(c, err, "ServeDetail")
		return
	}
	utils.RespondOK(c, http.StatusOK, "line item served", order)
}

// DeleteDetail removes a line item from an order.
func (h *OrderHandler) DeleteDetail(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detailID, ok := parseIDParam(c, "detailId")
	if !ok {
		return
	}

	order, err := h.orderService.DeleteDetail(orderID, detailID)
	if err != nil {
		respondServiceError(c, err, "DeleteDetail")
		return
	}
	utils.RespondOK(c, http.StatusOK, "line item removed", order)
}
