// Package application 订单应用服务，承载下单的多步一致性逻辑
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/medsupply/internal/order/domain"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"github.com/wyfcoding/medsupply/pkg/metrics"
	"github.com/wyfcoding/medsupply/pkg/utils"
)

// Caller 发起操作的调用者
type Caller struct {
	UserID uint
	Admin  bool
}

// UpdateOrderInput 订单部分更新入参，nil 表示不更新
type UpdateOrderInput struct {
	Status *domain.OrderStatus
	Notes  *string
}

// OrderApplicationService 订单应用服务
type OrderApplicationService struct {
	repo      domain.OrderRepository
	publisher domain.EventPublisher
	notifier  domain.Notifier
	idgen     *utils.SnowflakeID
	metrics   *metrics.Metrics
}

// NewOrderApplicationService 创建订单应用服务。
// publisher、notifier、m 允许为 nil，相应的旁路步骤被跳过。
func NewOrderApplicationService(
	repo domain.OrderRepository,
	publisher domain.EventPublisher,
	notifier domain.Notifier,
	idgen *utils.SnowflakeID,
	m *metrics.Metrics,
) *OrderApplicationService {
	return &OrderApplicationService{
		repo:      repo,
		publisher: publisher,
		notifier:  notifier,
		idgen:     idgen,
		metrics:   m,
	}
}

// PlaceOrder 下单。
// 校验与提交：空单拒绝；任一商品缺失或库存不足拒绝整单；订单、行项目
// 与库存扣减在仓储层的单个事务内提交。
// 提交成功后发布事件并触发通知，两者均为尽力而为，失败只记日志，
// 不回滚已提交的订单，也不影响返回值。
func (s *OrderApplicationService) PlaceOrder(ctx context.Context, userID uint, lines []domain.OrderLine, notes string) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrEmptyOrder)
		}
	}

	order := &domain.Order{
		OrderNo: fmt.Sprintf("ORD-%d", s.idgen.Generate()),
		UserID:  userID,
		Status:  domain.OrderStatusPending,
		Notes:   notes,
	}

	if err := s.repo.PlaceOrder(ctx, order, lines); err != nil {
		var stockErr *domain.InsufficientStockError
		if s.metrics != nil && errors.As(err, &stockErr) {
			s.metrics.StockRejectionsTotal.Inc()
		}
		return nil, err
	}

	hydrated, err := s.repo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersPlacedTotal.Inc()
		s.metrics.OrderItemsTotal.Add(float64(len(hydrated.Items)))
	}

	s.publishPlaced(ctx, hydrated)
	s.notifyPlaced(hydrated)

	return hydrated, nil
}

// publishPlaced 发布订单创建事件，失败只记日志
func (s *OrderApplicationService) publishPlaced(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}

	event := &domain.OrderPlacedEvent{
		OrderNo:   order.OrderNo,
		OrderID:   order.ID,
		UserID:    order.UserID,
		ItemCount: len(order.Items),
		PlacedAt:  order.CreatedAt.Unix(),
	}
	if order.User != nil {
		event.UserEmail = order.User.Email
	}

	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		logger.Warn(ctx, "Failed to publish order placed event", "order_no", order.OrderNo, "error", err)
	}
}

// notifyPlaced 异步触发通知。通知与响应返回之间无顺序保证。
func (s *OrderApplicationService) notifyPlaced(order *domain.Order) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx := context.Background()
		if err := s.notifier.NotifyOrderPlaced(ctx, order); err != nil {
			logger.Error(ctx, "Order notification failed", "order_no", order.OrderNo, "error", err)
		}
	}()
}

// GetOrder 获取订单，非管理员只能查看自己的订单
func (s *OrderApplicationService) GetOrder(ctx context.Context, caller Caller, id uint) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Admin && order.UserID != caller.UserID {
		return nil, domain.ErrAccessDenied
	}
	return order, nil
}

// ListOrders 管理员查看全部订单，其他用户仅查看自己的
func (s *OrderApplicationService) ListOrders(ctx context.Context, caller Caller) ([]*domain.Order, error) {
	if caller.Admin {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByUser(ctx, caller.UserID)
}

// UpdateOrder 部分更新订单。
// 管理员可更新状态与备注；订单所有者仅可更新备注。
// 状态取值必须属于合法枚举。
func (s *OrderApplicationService) UpdateOrder(ctx context.Context, caller Caller, id uint, input UpdateOrderInput) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.Admin {
		if order.UserID != caller.UserID || input.Status != nil {
			return nil, domain.ErrAccessDenied
		}
	}

	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return nil, domain.ErrInvalidStatus
	}

	if err := s.repo.UpdateStatusNotes(ctx, id, input.Status, input.Notes); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// DeleteOrder 删除订单（仅管理员），级联删除行项目
func (s *OrderApplicationService) DeleteOrder(ctx context.Context, caller Caller, id uint) error {
	if !caller.Admin {
		return domain.ErrAccessDenied
	}
	return s.repo.Delete(ctx, id)
}
