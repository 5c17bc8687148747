package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/pricing"
	"github.com/ridloal/woodkits-store/internal/pricing/service"
)

type CalculateRequest struct {
	ProductID     string                `json:"productId" binding:"required"`
	Configuration pricing.Configuration `json:"configuration"`
}

type PricingBreakdown struct {
	BasePrice      float64 `json:"basePrice"`
	SizeAdjustment float64 `json:"sizeAdjustment"`
	ColorCost      float64 `json:"colorCost"`
	TotalPrice     float64 `json:"totalPrice"`
	Currency       string  `json:"currency"`
}

type CalculateData struct {
	ProductID string           `json:"productId"`
	Pricing   PricingBreakdown `json:"pricing"`
}

type CalculateResponse struct {
	Success bool          `json:"success"`
	Data    CalculateData `json:"data"`
}

type ErrorBody struct {
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	Field      string  `json:"field,omitempty"`
	Path       string  `json:"path,omitempty"`
	Constraint string  `json:"constraint,omitempty"`
	Bound      *string `json:"bound,omitempty"`
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type PricingHandler struct {
	pricingService service.PricingService
}

func NewPricingHandler(ps service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: ps}
}

func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	pricingRoutes := router.Group("/pricing")
	{
		pricingRoutes.POST("/calculate", h.Calculate)
	}
}

func (h *PricingHandler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    "BAD_REQUEST",
			Message: "Invalid request payload: " + err.Error(),
		}})
		return
	}

	quote, err := h.pricingService.CalculatePrice(c.Request.Context(), req.ProductID, req.Configuration)
	if err != nil {
		status, body := ErrorToBody(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Calculate: service error", err, logger.Fields{"product_id": req.ProductID})
		}
		c.JSON(status, ErrorResponse{Error: body})
		return
	}

	c.JSON(http.StatusOK, CalculateResponse{
		Success: true,
		Data: CalculateData{
			ProductID: req.ProductID,
			Pricing:   ToBreakdown(quote.Result),
		},
	})
}

// ToBreakdown converts a Result into its wire form.
func ToBreakdown(res pricing.Result) PricingBreakdown {
	return PricingBreakdown{
		BasePrice:      res.BasePrice.InexactFloat64(),
		SizeAdjustment: res.SizeAdjustment.InexactFloat64(),
		ColorCost:      res.OptionCost.InexactFloat64(),
		TotalPrice:     res.TotalPrice.InexactFloat64(),
		Currency:       res.Currency,
	}
}

// ErrorToBody maps pricing failures to an HTTP status and error payload.
// Order creation reuses it for line item failures.
func ErrorToBody(err error) (int, ErrorBody) {
	var vErr *pricing.ValidationError
	switch {
	case errors.As(err, &vErr):
		body := ErrorBody{
			Code:       "VALIDATION_ERROR",
			Message:    vErr.Error(),
			Field:      vErr.Field,
			Path:       vErr.Path(),
			Constraint: vErr.Constraint,
		}
		if b := vErr.BoundString(); b != "" {
			body.Bound = &b
		}
		return http.StatusBadRequest, body
	case errors.Is(err, pricing.ErrProductNotFound):
		return http.StatusNotFound, ErrorBody{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, pricing.ErrInvalidSchema):
		return http.StatusUnprocessableEntity, ErrorBody{Code: "UNPRICEABLE_PRODUCT", Message: "Product cannot be priced"}
	}
	return http.StatusInternalServerError, ErrorBody{Code: "INTERNAL", Message: "Failed to calculate price"}
}
