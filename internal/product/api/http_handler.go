package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/platform/middleware"
	"github.com/ridloal/woodkits-store/internal/product/domain"
	"github.com/ridloal/woodkits-store/internal/product/repository"
	"github.com/ridloal/woodkits-store/internal/product/service"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(ps service.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	productRoutes := router.Group("/products")
	{
		productRoutes.GET("", h.ListProducts)
		productRoutes.GET("/", h.ListProducts)
		productRoutes.GET("/:id", h.GetProduct)
	}
}

// RegisterAdminRoutes expects router to be guarded by the admin middleware.
func (h *ProductHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	adminRoutes := router.Group("/products")
	{
		adminRoutes.GET("", h.ListAllProducts)
		adminRoutes.POST("", h.CreateProduct)
		adminRoutes.PUT("/:id", h.UpdateProduct)
		adminRoutes.DELETE("/:id", h.DeleteProduct)
		adminRoutes.PUT("/:id/stock", h.SetStock)
	}
}

// LocalizedProduct is the storefront rendering of a product in one language.
type LocalizedProduct struct {
	domain.Product
	Name        string `json:"name"`
	Description string `json:"description"`
}

func localize(c *gin.Context, p domain.Product) interface{} {
	if c.Query("localized") == "" {
		return p
	}
	locale := middleware.LocaleFromContext(c.Request.Context())
	return LocalizedProduct{
		Product:     p,
		Name:        p.Name.Pick(locale),
		Description: p.Description.Pick(locale),
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		Category:    c.Query("category"),
		InStockOnly: c.Query("inStock") == "true",
	}
	products, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		logger.Error("ListProducts: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
		return
	}
	out := make([]interface{}, len(products))
	for i, p := range products {
		out[i] = localize(c, p)
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) ListAllProducts(c *gin.Context) {
	filter := domain.ProductFilter{Category: c.Query("category"), IncludeInactive: true}
	products, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		logger.Error("ListAllProducts: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")
	product, err := h.productService.GetProductDetails(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("GetProduct: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		return
	}
	c.JSON(http.StatusOK, localize(c, *product))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var in domain.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	product, err := h.productService.CreateProduct(c.Request.Context(), in)
	if err != nil {
		h.writeMutationError(c, "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var in domain.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeMutationError(c, "UpdateProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.writeMutationError(c, "DeleteProduct", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) SetStock(c *gin.Context) {
	var req domain.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	if err := h.productService.SetStock(c.Request.Context(), c.Param("id"), req.StockCount); err != nil {
		h.writeMutationError(c, "SetStock", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated", "stockCount": req.StockCount})
}

func (h *ProductHandler) writeMutationError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrSlugConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(op+": service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product"})
	}
}
