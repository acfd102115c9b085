// Package http 订单 HTTP 处理器
package http

import (
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	authdomain "github.com/wyfcoding/medsupply/internal/auth/domain"
	"github.com/wyfcoding/medsupply/internal/order/application"
	"github.com/wyfcoding/medsupply/internal/order/domain"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"github.com/wyfcoding/medsupply/pkg/response"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	service *application.OrderApplicationService
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 注册路由。删除订单要求管理员，由调用方挂载 adminOnly。
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	api := router.Group("/orders")
	{
		api.GET("", h.ListOrders)
		api.POST("", h.CreateOrder)
		api.GET("/:id", h.GetOrder)
		api.PUT("/:id", h.UpdateOrder)
		api.DELETE("/:id", adminOnly, h.DeleteOrder)
	}
}

// OrderLineRequest 下单请求中的一行
type OrderLineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items"`
	Notes string             `json:"notes"`
}

// CreateOrder 下单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	identity, ok := authdomain.IdentityFrom(c.Request.Context())
	if !ok {
		response.Error(c, nethttp.StatusUnauthorized, "Non autorisé")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	lines := make([]domain.OrderLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = domain.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	order, err := h.service.PlaceOrder(c.Request.Context(), identity.UserID, lines, req.Notes)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 查询订单列表
func (h *OrderHandler) ListOrders(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Error(c, nethttp.StatusUnauthorized, "Non autorisé")
		return
	}

	orders, err := h.service.ListOrders(c.Request.Context(), caller)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list orders", "error", err)
		response.Error(c, nethttp.StatusInternalServerError, "Erreur lors de la récupération des commandes")
		return
	}
	response.Success(c, orders)
}

// GetOrder 查询订单详情
func (h *OrderHandler) GetOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Error(c, nethttp.StatusUnauthorized, "Non autorisé")
		return
	}

	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), caller, id)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderRequest 订单部分更新请求
type UpdateOrderRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateOrder 更新订单状态/备注
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Error(c, nethttp.StatusUnauthorized, "Non autorisé")
		return
	}

	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	input := application.UpdateOrderInput{Notes: req.Notes}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		input.Status = &status
	}

	order, err := h.service.UpdateOrder(c.Request.Context(), caller, id, input)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// DeleteOrder 删除订单
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Error(c, nethttp.StatusUnauthorized, "Non autorisé")
		return
	}

	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}

	if err := h.service.DeleteOrder(c.Request.Context(), caller, id); err != nil {
		h.writeOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Commande supprimée avec succès"})
}

// writeOrderError 将领域错误映射为 HTTP 状态码
func (h *OrderHandler) writeOrderError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		response.Error(c, nethttp.StatusBadRequest, "La commande ne peut être vide")
	case errors.As(err, &stockErr):
		response.Error(c, nethttp.StatusBadRequest, "Stock insuffisant pour le produit: "+stockErr.Product)
	case errors.Is(err, domain.ErrInvalidStatus):
		response.Error(c, nethttp.StatusBadRequest, "Statut de commande invalide")
	case errors.Is(err, domain.ErrOrderNotFound):
		response.Error(c, nethttp.StatusNotFound, "Commande non trouvée")
	case errors.Is(err, domain.ErrAccessDenied):
		response.Error(c, nethttp.StatusForbidden, "Accès refusé")
	default:
		logger.Error(c.Request.Context(), "Order operation failed", "error", err)
		response.Error(c, nethttp.StatusInternalServerError, "Erreur lors du traitement de la commande")
	}
}

func callerFrom(c *gin.Context) (application.Caller, bool) {
	identity, ok := authdomain.IdentityFrom(c.Request.Context())
	if !ok {
		return application.Caller{}, false
	}
	return application.Caller{UserID: identity.UserID, Admin: identity.IsAdmin()}, true
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
