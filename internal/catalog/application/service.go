// Package application 商品目录应用服务
package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/medsupply/internal/catalog/domain"
)

// CatalogApplicationService 商品目录应用服务
type CatalogApplicationService struct {
	products    domain.ProductRepository
	categories  domain.CategoryRepository
	assignments domain.AssignmentRepository
}

// NewCatalogApplicationService 创建商品目录应用服务
func NewCatalogApplicationService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	assignments domain.AssignmentRepository,
) *CatalogApplicationService {
	return &CatalogApplicationService{
		products:    products,
		categories:  categories,
		assignments: assignments,
	}
}

// ProductInput 商品创建/更新入参
type ProductInput struct {
	Name        string
	Reference   *string
	SupplierRef *string
	Description *string
	Price       decimal.Decimal
	Stock       int
	CategoryID  uint
}

// CreateProduct 创建商品，分类必须存在
func (s *CatalogApplicationService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Reference:   input.Reference,
		SupplierRef: input.SupplierRef,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, product.ID)
}

// UpdateProduct 更新商品
func (s *CatalogApplicationService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != product.CategoryID {
		if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	product.Name = input.Name
	product.Reference = input.Reference
	product.SupplierRef = input.SupplierRef
	product.Description = input.Description
	product.Price = input.Price
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	product.Category = nil

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, id)
}

// DeleteProduct 删除商品
func (s *CatalogApplicationService) DeleteProduct(ctx context.Context, id uint) error {
	return s.products.Delete(ctx, id)
}

// GetProduct 获取商品
func (s *CatalogApplicationService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts 列出商品。admin 为 false 时仅返回分配给 userID 的商品。
func (s *CatalogApplicationService) ListProducts(ctx context.Context, search string, categoryID uint, userID uint, admin bool) ([]*domain.Product, error) {
	filter := domain.ProductFilter{
		Search:     search,
		CategoryID: categoryID,
	}
	if !admin {
		filter.AssignedUserID = userID
	}
	return s.products.List(ctx, filter)
}

// CreateCategory 创建分类
func (s *CatalogApplicationService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{Name: name}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory 更新分类名称
func (s *CatalogApplicationService) UpdateCategory(ctx context.Context, id uint, name string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory 删除分类，仍被商品引用时返回 ErrCategoryInUse
func (s *CatalogApplicationService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categories.Delete(ctx, id)
}

// GetCategory 获取分类
func (s *CatalogApplicationService) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ListCategories 列出全部分类
func (s *CatalogApplicationService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// AssignProduct 将商品分配给用户；商品必须存在，已分配时返回冲突
func (s *CatalogApplicationService) AssignProduct(ctx context.Context, productID, userID uint) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.assignments.Assign(ctx, userID, productID)
}

// UnassignProduct 解除商品分配；不存在的分配返回 ErrAssignmentNotFound
func (s *CatalogApplicationService) UnassignProduct(ctx context.Context, productID uint) error {
	return s.assignments.Unassign(ctx, productID)
}
