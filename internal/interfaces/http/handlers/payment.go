// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/payment"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/interfaces/http/middleware"
)

// PaymentHandler handles gateway checkout and the provider callback
type PaymentHandler struct {
	paymentService *payment.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitiateGateway handles POST /order/create/gateway
func (h *PaymentHandler) InitiateGateway(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req payment.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.paymentService.Initiate(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, payment.ErrGatewayRejected) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment initiated, complete it at the payment URL",
		"data":    resp,
	})
}

// GatewayCallback handles POST /order/gateway-callback. This endpoint is
// public: the provider authenticates by signature, not by session. The
// HTTP status is always 200; the envelope carries the outcome.
func (h *PaymentHandler) GatewayCallback(c *gin.Context) {
	var payload payment.CallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusOK, payment.CallbackAck{
			ReturnCode:    payment.AckInvalid,
			ReturnMessage: "malformed callback",
		})
		return
	}

	ackResp := h.paymentService.HandleCallback(c.Request.Context(), &payload)
	c.JSON(http.StatusOK, ackResp)
}
