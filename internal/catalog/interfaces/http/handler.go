// Package http 商品目录 HTTP 处理器
package http

import (
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	authdomain "github.com/wyfcoding/medsupply/internal/auth/domain"
	"github.com/wyfcoding/medsupply/internal/catalog/application"
	"github.com/wyfcoding/medsupply/internal/catalog/domain"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"github.com/wyfcoding/medsupply/pkg/response"
)

// CatalogHandler 商品目录 HTTP 处理器
type CatalogHandler struct {
	service *application.CatalogApplicationService
}

// NewCatalogHandler 创建商品目录处理器
func NewCatalogHandler(service *application.CatalogApplicationService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes 注册路由。目录读取对所有登录用户开放，写操作仅限管理员。
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", adminOnly, h.CreateProduct)
		products.PUT("/:id", adminOnly, h.UpdateProduct)
		products.DELETE("/:id", adminOnly, h.DeleteProduct)
		products.POST("/:id/assign", adminOnly, h.AssignProduct)
		products.DELETE("/:id/assign", adminOnly, h.UnassignProduct)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", adminOnly, h.CreateCategory)
		categories.PUT("/:id", adminOnly, h.UpdateCategory)
		categories.DELETE("/:id", adminOnly, h.DeleteCategory)
	}
}

// ProductRequest 商品创建/更新请求
type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Reference   *string `json:"reference"`
	SupplierRef *string `json:"supplier_ref"`
	Description *string `json:"description"`
	Price       string  `json:"price" binding:"required"`
	Stock       int     `json:"stock" binding:"gte=0"`
	CategoryID  uint    `json:"category_id" binding:"required"`
}

func (r *ProductRequest) toInput() (application.ProductInput, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return application.ProductInput{}, err
	}
	return application.ProductInput{
		Name:        r.Name,
		Reference:   r.Reference,
		SupplierRef: r.SupplierRef,
		Description: r.Description,
		Price:       price,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
	}, nil
}

// ListProducts 列出商品，非管理员仅见分配给自己的商品
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	identity, ok := authdomain.IdentityFrom(c.Request.Context())
	if !ok {
		response.Error(c, nethttp.StatusUnauthorized, "Non autorisé")
		return
	}

	var categoryID uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Error(c, nethttp.StatusBadRequest, "category_id invalide")
			return
		}
		categoryID = uint(id)
	}

	products, err := h.service.ListProducts(c.Request.Context(), c.Query("search"), categoryID, identity.UserID, identity.IsAdmin())
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, products)
}

// GetProduct 获取商品详情
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "prix invalide")
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "prix invalide")
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Produit supprimé avec succès"})
}

// AssignRequest 商品分配请求
type AssignRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AssignProduct 将商品分配给用户
func (h *CatalogHandler) AssignProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.AssignProduct(c.Request.Context(), id, req.UserID); err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Produit assigné"})
}

// UnassignProduct 解除商品分配
func (h *CatalogHandler) UnassignProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}
	if err := h.service.UnassignProduct(c.Request.Context(), id); err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Assignation supprimée"})
}

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListCategories 列出分类
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, categories)
}

// GetCategory 获取分类详情
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}
	category, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, category)
}

// CreateCategory 创建分类
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类，仍被商品引用时返回冲突
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, nethttp.StatusBadRequest, "identifiant invalide")
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		h.writeCatalogError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Catégorie supprimée avec succès"})
}

// writeCatalogError 将领域错误映射为 HTTP 状态码
func (h *CatalogHandler) writeCatalogError(c *gin.Context, err error) {
	var assignedErr *domain.AlreadyAssignedError
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		response.Error(c, nethttp.StatusNotFound, "Produit non trouvé")
	case errors.Is(err, domain.ErrCategoryNotFound):
		response.Error(c, nethttp.StatusNotFound, "Catégorie non trouvée")
	case errors.Is(err, domain.ErrAssignmentNotFound):
		response.Error(c, nethttp.StatusNotFound, "Assignation non trouvée")
	case errors.Is(err, domain.ErrCategoryNameTaken):
		response.Error(c, nethttp.StatusConflict, "Une catégorie portant ce nom existe déjà")
	case errors.Is(err, domain.ErrCategoryInUse):
		response.Error(c, nethttp.StatusConflict, "La catégorie est encore utilisée par des produits")
	case errors.As(err, &assignedErr):
		response.Error(c, nethttp.StatusConflict, "Produit déjà assigné")
	default:
		logger.Error(c.Request.Context(), "Catalog operation failed", "error", err)
		response.Error(c, nethttp.StatusInternalServerError, "Erreur lors du traitement de la requête")
	}
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
