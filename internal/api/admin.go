package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"oms-api/internal/models"
	"oms-api/internal/service"
	"oms-api/internal/store"

	"github.com/gin-gonic/gin"
)

func (h *Handler) adminPanel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the OMS Admin Panel, please take care of the pending orders!",
	})
}

// adminListOrders lists all orders, or orders in one status when the
// status query parameter is set; start_date/end_date (YYYY-MM-DD)
// bound created_at.
func (h *Handler) adminListOrders(c *gin.Context) {
	rawStatus := c.Query("status")
	if rawStatus == "" {
		orders, err := h.orders.ListOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
			return
		}
		if len(orders) == 0 {
			c.JSON(http.StatusOK, gin.H{"orders": []models.Order{}, "message": "No orders found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
		return
	}

	status, ok := models.ParseStatus(rawStatus)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Status not found"})
		return
	}

	from, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}

	orders, err := h.orders.ListOrdersByStatus(c.Request.Context(), status, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) adminGetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":     order.UserID,
		"status":      order.Status,
		"items":       order.Items,
		"total_price": order.TotalPrice,
		"created_at":  order.CreatedAt.Format(time.RFC3339),
		"updated_at":  order.UpdatedAt.Format(time.RFC3339),
	})
}

type updateStatusRequest struct {
	OrderID   int64  `json:"order_id" binding:"required"`
	NewStatus string `json:"new_status" binding:"required"`
}

func (h *Handler) adminUpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	status, ok := models.ParseStatus(req.NewStatus)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: " + req.NewStatus})
		return
	}

	order, ack, err := h.orders.Transition(c.Request.Context(), req.OrderID, status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrInvalidTransition),
			errors.Is(err, store.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
		"email":   ack,
	})
}

func (h *Handler) adminDeleteOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	ack, err := h.orders.Delete(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found or deleted already"})
		case errors.Is(err, service.ErrOrderNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only Pending orders can be deleted"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted successfully",
		"email":   ack,
	})
}

func (h *Handler) adminDeleteAllOrders(c *gin.Context) {
	acks, deleted, err := h.orders.DeleteAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete orders"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No orders found to delete"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "All orders deleted successfully",
		"deleted": deleted,
		"email":   acks,
	})
}

func parseOrderID(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return 0, false
	}
	return orderID, true
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format. Expected YYYY-MM-DD."})
		return nil, false
	}
	return &t, true
}
