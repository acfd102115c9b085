// Package domain 通知领域模型
package domain

import (
	"context"

	"gorm.io/gorm"
)

// NotificationChannel 通知渠道
type NotificationChannel string

// NotificationStatus 通知投递状态
type NotificationStatus string

const (
	ChannelEmail NotificationChannel = "EMAIL"

	StatusPending NotificationStatus = "PENDING"
	StatusSent    NotificationStatus = "SENT"
	StatusFailed  NotificationStatus = "FAILED"
)

// Notification 一次通知投递的记录
type Notification struct {
	gorm.Model
	Channel   NotificationChannel `gorm:"type:varchar(16);not null" json:"channel"`
	Recipient string              `gorm:"type:varchar(255);not null;index" json:"recipient"`
	Subject   string              `gorm:"type:varchar(255);not null" json:"subject"`
	Body      string              `gorm:"type:text" json:"body"`
	Status    NotificationStatus  `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	// 投递失败时的错误摘要
	LastError string `gorm:"type:varchar(512)" json:"last_error,omitempty"`
	// 触发通知的订单
	OrderID *uint `gorm:"index" json:"order_id,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// Message 待投递的邮件内容
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender 邮件投递接口
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// NotificationRepository 通知记录仓储接口
type NotificationRepository interface {
	Save(ctx context.Context, notification *Notification) error
	Update(ctx context.Context, notification *Notification) error
	ListByOrder(ctx context.Context, orderID uint) ([]*Notification, error)
}
