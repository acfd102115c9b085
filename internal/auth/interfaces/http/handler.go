// Package http 认证 HTTP 处理器
package http

import (
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/medsupply/internal/auth/application"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"github.com/wyfcoding/medsupply/pkg/response"
)

// AuthHandler 认证 HTTP 处理器
type AuthHandler struct {
	service *application.AuthApplicationService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(service *application.AuthApplicationService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/login", h.Login)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error(c, nethttp.StatusUnauthorized, "Identifiants invalides")
			return
		}
		logger.Error(c.Request.Context(), "Login failed", "error", err)
		response.Error(c, nethttp.StatusInternalServerError, "Erreur interne")
		return
	}

	response.Success(c, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Unix(),
		"user": gin.H{
			"id":    result.User.ID,
			"email": result.User.Email,
			"name":  result.User.Name,
			"role":  result.User.Role,
		},
	})
}
