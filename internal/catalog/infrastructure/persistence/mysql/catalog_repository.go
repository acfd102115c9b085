// Package mysql 商品目录仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/medsupply/internal/catalog/domain"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"gorm.io/gorm"
)

type productRepositoryImpl struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepositoryImpl{db: db}
}

// Save 保存商品
func (r *productRepositoryImpl) Save(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		logger.Error(ctx, "product_repository.save failed", "name", product.Name, "error", err)
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// GetByID 查询商品，携带分类与分配信息
func (r *productRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("AssignedUsers").
		Preload("AssignedUsers.User").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// List 按过滤条件查询商品，名称升序
func (r *productRepositoryImpl) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).
		Preload("Category").
		Preload("AssignedUsers").
		Preload("AssignedUsers.User")

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR reference LIKE ? OR description LIKE ?", like, like, like)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AssignedUserID != 0 {
		q = q.Where("id IN (?)",
			r.db.Model(&domain.UserProductAssignment{}).
				Select("product_id").
				Where("user_id = ?", filter.AssignedUserID))
	}

	var products []*domain.Product
	if err := q.Order("name asc").Find(&products).Error; err != nil {
		logger.Error(ctx, "product_repository.list failed", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Delete 删除商品，同时清理其分配记录。订单行项目中的引用置空由
// order_items.product_id 的 SET NULL 外键约束处理。
func (r *productRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Product{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.UserProductAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete product assignments: %w", err)
		}
		return nil
	})
}

type categoryRepositoryImpl struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储实例
func NewCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return &categoryRepositoryImpl{db: db}
}

// Save 保存分类，名称唯一冲突时返回 ErrCategoryNameTaken
func (r *categoryRepositoryImpl) Save(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCategoryNameTaken
		}
		logger.Error(ctx, "category_repository.save failed", "name", category.Name, "error", err)
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// GetByID 查询分类
func (r *categoryRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// List 列出全部分类，名称升序
func (r *categoryRepositoryImpl) List(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Delete 删除分类；仍被商品引用时拒绝
func (r *categoryRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count category products: %w", err)
		}
		if count > 0 {
			return domain.ErrCategoryInUse
		}

		res := tx.Delete(&domain.Category{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
}

type assignmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAssignmentRepository 创建分配仓储实例
func NewAssignmentRepository(db *gorm.DB) domain.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

// Assign 原子插入分配记录。依赖 product_id 唯一索引在写入时拒绝重复，
// 而不是先查后写。
func (r *assignmentRepositoryImpl) Assign(ctx context.Context, userID, productID uint) error {
	assignment := &domain.UserProductAssignment{
		UserID:    userID,
		ProductID: productID,
	}
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &domain.AlreadyAssignedError{ProductID: productID}
		}
		logger.Error(ctx, "assignment_repository.assign failed", "product_id", productID, "error", err)
		return fmt.Errorf("failed to assign product: %w", err)
	}
	return nil
}

// Unassign 删除分配记录，不存在时返回 ErrAssignmentNotFound
func (r *assignmentRepositoryImpl) Unassign(ctx context.Context, productID uint) error {
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&domain.UserProductAssignment{})
	if res.Error != nil {
		return fmt.Errorf("failed to unassign product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

// GetByProduct 查询商品的分配记录
func (r *assignmentRepositoryImpl) GetByProduct(ctx context.Context, productID uint) (*domain.UserProductAssignment, error) {
	var assignment domain.UserProductAssignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &assignment, nil
}
