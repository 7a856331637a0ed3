// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/order"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/pricing"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/user"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/interfaces/http/middleware"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/pkg/pdf"
)

// OrderHandler handles customer order endpoints
type OrderHandler struct {
	orderService *order.Service
	pdfService   *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, pdfService *pdf.Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		pdfService:   pdfService,
	}
}

// Quote handles POST /order/quote, pricing the cart without mutating
// anything
func (h *OrderHandler) Quote(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req struct {
		CouponCode   string `json:"coupon_code"`
		RedeemPoints int    `json:"redeem_points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	quote, _, err := h.orderService.QuoteCart(c.Request.Context(), userID, req.CouponCode, req.RedeemPoints)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quote computed successfully",
		"data":    quote,
	})
}

// CreateCOD handles POST /order/create/cod
func (h *OrderHandler) CreateCOD(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ord, err := h.orderService.CreateCODOrder(c.Request.Context(), userID, &req)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    ord,
	})
}

// ListOrders handles GET /order
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var query struct {
		Page  int `form:"page,default=1"`
		Limit int `form:"limit,default=20"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	orders, total, err := h.orderService.GetOrders(c.Request.Context(), userID, query.Page, query.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data": gin.H{
			"orders": orders,
			"total":  total,
			"page":   query.Page,
			"limit":  query.Limit,
		},
	})
}

// GetOrder handles GET /order/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ord, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    ord,
	})
}

// CancelOrder handles PUT /order/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ord, err := h.orderService.CancelOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, order.ErrCancelWindow):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order can no longer be canceled directly, submit a cancellation request instead",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order canceled successfully",
		"data":    ord,
	})
}

// RequestCancellation handles PUT /order/:id/cancel-request
func (h *OrderHandler) RequestCancellation(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ord, err := h.orderService.RequestCancellation(c.Request.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, order.ErrIllegalTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "Cancellation cannot be requested for this order"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request cancellation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cancellation requested, our staff will review it",
		"data":    ord,
	})
}

// GetInvoice handles GET /order/:id/invoice
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ord, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
		return
	}

	buf, err := h.pdfService.GenerateInvoice(ord)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate invoice"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%d.pdf", ord.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// respondCheckoutError maps pricing and checkout errors to HTTP statuses
func respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, order.ErrAddressRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery address is required for delivery orders"})
	case errors.Is(err, pricing.ErrInvalidLineItem),
		errors.Is(err, pricing.ErrCouponInvalid),
		errors.Is(err, pricing.ErrCouponExpired),
		errors.Is(err, pricing.ErrInvalidRedemption),
		errors.Is(err, pricing.ErrInsufficientPoints),
		errors.Is(err, user.ErrInsufficientPoints):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed"})
	}
}
