// Package mysql 订单仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	catalogdomain "github.com/wyfcoding/medsupply/internal/catalog/domain"
	"github.com/wyfcoding/medsupply/internal/order/domain"
	pkgdb "github.com/wyfcoding/medsupply/pkg/db"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"gorm.io/gorm"
)

type orderRepositoryImpl struct {
	db *pkgdb.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *pkgdb.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: db}
}

// PlaceOrder 在单个事务内创建订单、行项目并条件扣减库存。
// 扣减使用 stock >= quantity 的条件 UPDATE，并发提交竞争同一商品时
// 后到者影响行数为 0，整个事务回滚，库存恒不为负。
func (r *orderRepositoryImpl) PlaceOrder(ctx context.Context, order *domain.Order, lines []domain.OrderLine) error {
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		// 预校验：商品存在且库存充足，失败时指明商品
		for _, line := range lines {
			var product catalogdomain.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &domain.InsufficientStockError{Product: strconv.FormatUint(uint64(line.ProductID), 10)}
				}
				return fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
			}
			if product.Stock < line.Quantity {
				return &domain.InsufficientStockError{Product: product.Name}
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range lines {
			productID := line.ProductID
			item := domain.OrderItem{
				OrderID:   order.ID,
				ProductID: &productID,
				Quantity:  line.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		// 条件扣减，拦截预校验之后发生的并发扣减
		for _, line := range lines {
			res := tx.Model(&catalogdomain.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %d: %w", line.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				var product catalogdomain.Product
				name := strconv.FormatUint(uint64(line.ProductID), 10)
				if err := tx.First(&product, line.ProductID).Error; err == nil {
					name = product.Name
				}
				return &domain.InsufficientStockError{Product: name}
			}
		}

		return nil
	})
	if err != nil {
		var insufficientErr *domain.InsufficientStockError
		if !errors.As(err, &insufficientErr) {
			logger.Error(ctx, "order_repository.place_order failed", "order_no", order.OrderNo, "error", err)
		}
		return err
	}
	return nil
}

// GetByID 查询订单，携带行项目、商品、分类与用户
func (r *orderRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListByUser 按用户查询订单，创建时间倒序
func (r *orderRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		logger.Error(ctx, "order_repository.list_by_user failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAll 查询全部订单，创建时间倒序
func (r *orderRepositoryImpl) ListAll(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatusNotes 部分更新状态与备注
func (r *orderRepositoryImpl) UpdateStatusNotes(ctx context.Context, id uint, status *domain.OrderStatus, notes *string) error {
	updates := map[string]interface{}{}
	if status != nil {
		updates["status"] = string(*status)
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	if len(updates) == 0 {
		return nil
	}

	var order domain.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("failed to load order: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&order).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// Delete 删除订单并级联删除行项目
func (r *orderRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Order{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		return nil
	})
}
