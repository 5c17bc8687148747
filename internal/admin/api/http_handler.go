package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/woodkits-store/internal/admin/domain"
	"github.com/ridloal/woodkits-store/internal/admin/repository"
	"github.com/ridloal/woodkits-store/internal/admin/service"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(as service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: as}
}

// RegisterRoutes mounts the public login route on router and the protected
// routes on protected, which must already carry RequireAdmin.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, protected *gin.RouterGroup) {
	router.POST("/admin/login", h.Login)
	protected.POST("/admins", h.CreateAdmin)
	protected.GET("/me", h.Me)
}

func errorBody(code, message string) gin.H {
	return gin.H{"success": false, "error": gin.H{"code": code, "message": message}}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	response, err := h.adminService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", err.Error()))
			return
		}
		logger.Error("Login: service error", err)
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "Failed to login"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req domain.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	admin, err := h.adminService.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrAdminAlreadyExists) {
			c.JSON(http.StatusConflict, errorBody("CONFLICT", err.Error()))
			return
		}
		logger.Error("CreateAdmin: service error", err)
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "Failed to create admin"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": admin})
}

func (h *AdminHandler) Me(c *gin.Context) {
	claims, ok := AdminFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "not authenticated"))
		return
	}
	admin, err := h.adminService.GetAdmin(c.Request.Context(), claims.AdminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "admin no longer exists"))
			return
		}
		logger.Error("Me: service error", err)
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "Failed to load admin"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": admin})
}
