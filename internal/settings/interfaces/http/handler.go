// Package http 系统设置 HTTP 处理器
package http

import (
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/medsupply/internal/settings/application"
	"github.com/wyfcoding/medsupply/internal/settings/domain"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"github.com/wyfcoding/medsupply/pkg/response"
)

// SettingHandler 设置 HTTP 处理器
type SettingHandler struct {
	service *application.SettingApplicationService
}

// NewSettingHandler 创建设置处理器
func NewSettingHandler(service *application.SettingApplicationService) *SettingHandler {
	return &SettingHandler{service: service}
}

// RegisterRoutes 注册路由，读写均仅限管理员
func (h *SettingHandler) RegisterRoutes(router *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	api := router.Group("/settings", adminOnly)
	{
		api.GET("/:key", h.GetSetting)
		api.PUT("/:key", h.UpdateSetting)
	}
}

// GetSetting 查询设置项
func (h *SettingHandler) GetSetting(c *gin.Context) {
	setting, err := h.service.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, domain.ErrSettingNotFound) {
			response.Error(c, nethttp.StatusNotFound, "Paramètre non trouvé")
			return
		}
		logger.Error(c.Request.Context(), "Failed to get setting", "key", c.Param("key"), "error", err)
		response.Error(c, nethttp.StatusInternalServerError, "Erreur lors de la récupération du paramètre")
		return
	}
	response.Success(c, setting)
}

// UpdateSettingRequest 设置项更新请求
type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// UpdateSetting 写入设置项
func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	setting, err := h.service.UpdateSetting(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to update setting", "key", c.Param("key"), "error", err)
		response.Error(c, nethttp.StatusInternalServerError, "Erreur lors de la mise à jour du paramètre")
		return
	}
	response.Success(c, setting)
}
