package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/review/domain"
	"github.com/ridloal/woodkits-store/internal/review/repository"
	"github.com/ridloal/woodkits-store/internal/review/service"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(rs service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: rs}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/products/:id/reviews", h.ListProductReviews)
	router.POST("/products/:id/reviews", h.CreateReview)
}

func (h *ReviewHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	reviewRoutes := admin.Group("/reviews")
	{
		reviewRoutes.GET("", h.ListReviews)
		reviewRoutes.PUT("/:id/approve", h.ApproveReview)
		reviewRoutes.DELETE("/:id", h.DeleteReview)
	}
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "error": gin.H{"code": code, "message": message}})
}

func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, repository.ErrReviewNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrInvalidRating), errors.Is(err, service.ErrInvalidReview):
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		logger.Error(op+": service error", err)
		fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to process review")
	}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req domain.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload: "+err.Error())
		return
	}
	review, err := h.reviewService.CreateReview(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, "CreateReview", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": review})
}

func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListProductReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "ListProductReviews", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews})
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context(), c.Query("pending") == "true")
	if err != nil {
		writeError(c, "ListReviews", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews})
}

func (h *ReviewHandler) ApproveReview(c *gin.Context) {
	if err := h.reviewService.ApproveReview(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "ApproveReview", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "DeleteReview", err)
		return
	}
	c.Status(http.StatusNoContent)
}
