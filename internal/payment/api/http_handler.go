package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	oRepo "github.com/ridloal/woodkits-store/internal/order/repository"
	"github.com/ridloal/woodkits-store/internal/payment/gateway"
	"github.com/ridloal/woodkits-store/internal/payment/service"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
)

const maxWebhookBody = 1 << 16

type CreateIntentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(ps service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	paymentRoutes := router.Group("/payments")
	{
		paymentRoutes.POST("/intents", h.CreateIntent)
		paymentRoutes.POST("/webhook", h.Webhook)
	}
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "error": gin.H{"code": code, "message": message}})
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, oRepo.ErrOrderNotFound):
			fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, service.ErrOrderNotPayable):
			fail(c, http.StatusConflict, "INVALID_STATUS", err.Error())
		default:
			logger.Error("CreateIntent: service error", err, logger.Fields{"order_id": req.OrderID})
			fail(c, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR", "Failed to start payment")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}

	err = h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			logger.Warn("Webhook: rejected event", logger.Fields{"error": err.Error()})
			c.Status(http.StatusBadRequest)
			return
		}
		logger.Error("Webhook: processing failed", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
