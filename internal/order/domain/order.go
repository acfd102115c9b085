// Package domain 订单上下文的领域模型
package domain

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/wyfcoding/medsupply/internal/catalog/domain"
	userdomain "github.com/wyfcoding/medsupply/internal/user/domain"
	"gorm.io/gorm"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusAcknowledged  OrderStatus = "ACKNOWLEDGED"
	OrderStatusInPreparation OrderStatus = "IN_PREPARATION"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
)

// ValidStatus 判断状态取值是否合法
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusAcknowledged, OrderStatusInPreparation, OrderStatusCompleted:
		return true
	}
	return false
}

// ErrEmptyOrder 订单行为空
var ErrEmptyOrder = errors.New("order must contain at least one item")

// ErrOrderNotFound 订单不存在
var ErrOrderNotFound = errors.New("order not found")

// ErrAccessDenied 调用者无权操作该订单
var ErrAccessDenied = errors.New("access denied")

// ErrInvalidStatus 状态取值非法
var ErrInvalidStatus = errors.New("invalid order status")

// InsufficientStockError 商品不存在或库存不足，拒绝整单
type InsufficientStockError struct {
	// 商品名称；商品不存在时为请求中的商品 ID 字符串
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s", e.Product)
}

// Order 订单实体
type Order struct {
	gorm.Model
	// 订单编号，雪花 ID 生成
	OrderNo string `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null" json:"order_no"`
	// 所属用户
	UserID uint             `gorm:"column:user_id;index;not null" json:"user_id"`
	User   *userdomain.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// 订单状态
	Status OrderStatus `gorm:"column:status;type:varchar(20);index;not null;default:'PENDING'" json:"status"`
	// 备注
	Notes string `gorm:"column:notes;type:text" json:"notes"`
	// 行项目，随订单级联删除
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName 指定表名
func (Order) TableName() string { return "orders" }

// OrderItem 订单行项目，创建后不可变。
// 商品删除后 product_id 置空，保留历史行。
type OrderItem struct {
	gorm.Model
	OrderID   uint                   `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID *uint                  `gorm:"column:product_id;index;constraint:OnDelete:SET NULL" json:"product_id"`
	Product   *catalogdomain.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int                    `gorm:"column:quantity;not null" json:"quantity"`
}

// TableName 指定表名
func (OrderItem) TableName() string { return "order_items" }

// OrderLine 下单请求中的一行
type OrderLine struct {
	ProductID uint
	Quantity  int
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// PlaceOrder 原子完成：校验库存、创建订单与行项目、条件扣减库存。
	// 任一商品缺失或库存不足时返回 *InsufficientStockError，整单回滚。
	PlaceOrder(ctx context.Context, order *Order, lines []OrderLine) error
	// GetByID 返回订单及行项目、商品、分类、用户
	GetByID(ctx context.Context, id uint) (*Order, error)
	// ListByUser 按用户查询订单，创建时间倒序
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)
	// ListAll 查询全部订单，创建时间倒序
	ListAll(ctx context.Context) ([]*Order, error)
	// UpdateStatusNotes 部分更新状态与备注，nil 表示不更新
	UpdateStatusNotes(ctx context.Context, id uint, status *OrderStatus, notes *string) error
	// Delete 删除订单并级联删除行项目
	Delete(ctx context.Context, id uint) error
}

// OrderPlacedEvent 订单创建事件
type OrderPlacedEvent struct {
	OrderNo   string `json:"order_no"`
	OrderID   uint   `json:"order_id"`
	UserID    uint   `json:"user_id"`
	UserEmail string `json:"user_email"`
	ItemCount int    `json:"item_count"`
	PlacedAt  int64  `json:"placed_at"`
}

// EventPublisher 订单事件发布接口
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *OrderPlacedEvent) error
}

// Notifier 订单创建通知接口，尽力而为
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, order *Order) error
}
