// Package mysql 通知记录仓储的 GORM 实现
package mysql

import (
	"context"
	"fmt"

	"github.com/wyfcoding/medsupply/internal/notification/domain"
	"gorm.io/gorm"
)

type notificationRepositoryImpl struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储实例
func NewNotificationRepository(db *gorm.DB) domain.NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

// Save 保存通知记录
func (r *notificationRepositoryImpl) Save(ctx context.Context, notification *domain.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// Update 更新通知记录
func (r *notificationRepositoryImpl) Update(ctx context.Context, notification *domain.Notification) error {
	if err := r.db.WithContext(ctx).Save(notification).Error; err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

// ListByOrder 查询某订单触发的全部通知
func (r *notificationRepositoryImpl) ListByOrder(ctx context.Context, orderID uint) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
