// Package application 购物车应用服务
package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/medsupply/internal/cart/domain"
)

// CartApplicationService 购物车应用服务。
// 内存中的购物车为权威副本，每次变更后整体写回存储。
type CartApplicationService struct {
	cart  *domain.Cart
	store domain.Store
}

// NewCartApplicationService 创建购物车应用服务并加载持久化内容
func NewCartApplicationService(ctx context.Context, store domain.Store) (*CartApplicationService, error) {
	items, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &CartApplicationService{cart: domain.NewCart(items), store: store}, nil
}

// Items 返回当前行项目
func (s *CartApplicationService) Items() []domain.Item {
	return s.cart.Items()
}

// Add 加入行项目并持久化
func (s *CartApplicationService) Add(ctx context.Context, item domain.Item) error {
	s.cart.Add(item)
	return s.persist(ctx)
}

// Remove 删除行项目并持久化
func (s *CartApplicationService) Remove(ctx context.Context, productID uint) error {
	s.cart.Remove(productID)
	return s.persist(ctx)
}

// SetQuantity 覆盖数量并持久化，数量 ≤ 0 等价于删除
func (s *CartApplicationService) SetQuantity(ctx context.Context, productID uint, quantity int) error {
	s.cart.SetQuantity(productID, quantity)
	return s.persist(ctx)
}

// Clear 清空购物车并持久化
func (s *CartApplicationService) Clear(ctx context.Context) error {
	s.cart.Clear()
	return s.persist(ctx)
}

func (s *CartApplicationService) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.cart.Items()); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
