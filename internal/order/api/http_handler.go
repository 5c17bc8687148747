package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/ridloal/woodkits-store/internal/order/repository"
	"github.com/ridloal/woodkits-store/internal/order/service"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/platform/middleware"
	pricingApi "github.com/ridloal/woodkits-store/internal/pricing/api"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(os service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orderRoutes := router.Group("/orders")
	{
		orderRoutes.POST("", h.CreateOrder)
		orderRoutes.GET("/:id", h.GetOrder)
	}
}

// RegisterAdminRoutes expects a group already guarded by admin auth.
func (h *OrderHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	orderRoutes := admin.Group("/orders")
	{
		orderRoutes.GET("", h.ListOrders)
		orderRoutes.GET("/export", h.ExportOrders)
		orderRoutes.PUT("/:id/status", h.UpdateOrderStatus)
	}
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, pricingApi.ErrorResponse{Error: pricingApi.ErrorBody{Code: code, Message: message}})
}

// writeError maps order and pricing failures to HTTP responses.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrInvalidOrder), errors.Is(err, service.ErrMixedCurrency):
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrStockReservationFailed):
		fail(c, http.StatusConflict, "OUT_OF_STOCK", err.Error())
	case errors.Is(err, service.ErrInvalidStatusTransition), errors.Is(err, service.ErrOrderCannotBeConfirmed):
		fail(c, http.StatusConflict, "INVALID_STATUS", err.Error())
	default:
		status, body := pricingApi.ErrorToBody(err)
		if status >= http.StatusInternalServerError {
			logger.Error(op+": unhandled service error", err)
			body.Message = "Failed to process order"
		}
		c.JSON(status, pricingApi.ErrorResponse{Error: body})
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload: "+err.Error())
		return
	}
	req.Locale = middleware.LocaleFromContext(c.Request.Context())

	resp, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, "CreateOrder", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": resp})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "GetOrder", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

func parseFilter(c *gin.Context) (domain.OrderFilter, error) {
	filter := domain.OrderFilter{Status: domain.OrderStatus(c.Query("status"))}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		if raw := c.Query(p.name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return filter, fmt.Errorf("%w: %s must be a non-negative integer", service.ErrInvalidOrder, p.name)
			}
			*p.dst = n
		}
	}
	return filter, nil
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		writeError(c, "ListOrders", err)
		return
	}
	orders, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "ListOrders", err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

func (h *OrderHandler) ExportOrders(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		writeError(c, "ExportOrders", err)
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(c, "ExportOrders", fmt.Errorf("%w: unknown status %q", service.ErrInvalidOrder, filter.Status))
		return
	}

	var buf bytes.Buffer
	if err := h.orderService.ExportOrders(c.Request.Context(), filter, &buf); err != nil {
		logger.Error("ExportOrders: export failed", err)
		fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to export orders")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-1504"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload: "+err.Error())
		return
	}
	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, "UpdateOrderStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}
