// Package http 用户 HTTP 处理器
package http

import (
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/medsupply/internal/user/application"
	"github.com/wyfcoding/medsupply/internal/user/domain"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"github.com/wyfcoding/medsupply/pkg/response"
)

// UserHandler 用户 HTTP 处理器
type UserHandler struct {
	service *application.UserApplicationService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(service *application.UserApplicationService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes 注册路由，用户管理仅限管理员
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	api := router.Group("/users", adminOnly)
	{
		api.GET("", h.ListUsers)
		api.POST("", h.CreateUser)
		api.GET("/:id", h.GetUser)
	}
}

// CreateUserRequest 用户创建请求
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// CreateUser 创建用户
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.Email, req.Name, req.Password, domain.Role(req.Role))
	if err != nil {
		h.writeUserError(c, err)
		return
	}
	response.Success(c, user)
}

// GetUser 获取用户
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), uint(id))
	if err != nil {
		h.writeUserError(c, err)
		return
	}
	response.Success(c, user)
}

// ListUsers 列出全部用户
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.writeUserError(c, err)
		return
	}
	response.Success(c, users)
}

// writeUserError 将领域错误映射为 HTTP 状态码
func (h *UserHandler) writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, nethttp.StatusNotFound, "Utilisateur non trouvé")
	case errors.Is(err, domain.ErrEmailTaken):
		response.Error(c, nethttp.StatusConflict, "Cette adresse email est déjà utilisée")
	case errors.Is(err, application.ErrInvalidRole):
		response.Error(c, nethttp.StatusBadRequest, "Rôle invalide")
	default:
		logger.Error(c.Request.Context(), "User operation failed", "error", err)
		response.Error(c, nethttp.StatusInternalServerError, "Erreur lors du traitement de la requête")
	}
}
