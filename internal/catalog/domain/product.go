// Package domain 商品目录上下文的领域模型
package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	userdomain "github.com/wyfcoding/medsupply/internal/user/domain"
	"gorm.io/gorm"
)

// ErrProductNotFound 商品不存在
var ErrProductNotFound = errors.New("product not found")

// ErrCategoryNotFound 分类不存在
var ErrCategoryNotFound = errors.New("category not found")

// ErrCategoryNameTaken 分类名称已存在
var ErrCategoryNameTaken = errors.New("category name already exists")

// ErrAssignmentNotFound 商品未分配给任何用户
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrCategoryInUse 分类下仍有商品，拒绝删除
var ErrCategoryInUse = errors.New("category still referenced by products")

// AlreadyAssignedError 商品已分配给其他用户
type AlreadyAssignedError struct {
	ProductID uint
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("product %d is already assigned to a user", e.ProductID)
}

// Category 商品分类
type Category struct {
	gorm.Model
	// 分类名称，唯一
	Name string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }

// Product 医用耗材商品
type Product struct {
	gorm.Model
	// 商品名称
	Name string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	// 内部参考号
	Reference *string `gorm:"column:reference;type:varchar(100)" json:"reference"`
	// 供应商参考号
	SupplierRef *string `gorm:"column:supplier_ref;type:varchar(100)" json:"supplier_ref"`
	// 描述
	Description *string `gorm:"column:description;type:text" json:"description"`
	// 单价，非负
	Price decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null;default:0" json:"price"`
	// 库存数量，提交订单时扣减，恒不为负
	Stock int `gorm:"column:stock;not null;default:0" json:"stock"`
	// 所属分类
	CategoryID uint      `gorm:"column:category_id;index;not null" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	// 分配记录（一个商品至多一条）
	AssignedUsers []UserProductAssignment `gorm:"foreignKey:ProductID" json:"assigned_users,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string { return "products" }

// UserProductAssignment 用户-商品分配，限制商品仅对单一用户可见/可订购。
// product_id 上的唯一索引在写入时保证一个商品至多一个用户。
type UserProductAssignment struct {
	gorm.Model
	UserID    uint             `gorm:"column:user_id;index;not null" json:"user_id"`
	ProductID uint             `gorm:"column:product_id;uniqueIndex;not null" json:"product_id"`
	User      *userdomain.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (UserProductAssignment) TableName() string { return "user_products" }

// ProductFilter 商品查询条件
type ProductFilter struct {
	// 针对名称/参考号/描述的模糊搜索
	Search string
	// 分类过滤
	CategoryID uint
	// 仅返回分配给该用户的商品（非管理员可见性过滤）
	AssignedUserID uint
}

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	Delete(ctx context.Context, id uint) error
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id uint) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	// Delete 当分类下仍有商品时返回 ErrCategoryInUse
	Delete(ctx context.Context, id uint) error
}

// AssignmentRepository 分配仓储接口
type AssignmentRepository interface {
	// Assign 原子插入，商品已被分配时返回 *AlreadyAssignedError
	Assign(ctx context.Context, userID, productID uint) error
	// Unassign 分配不存在时返回 ErrAssignmentNotFound
	Unassign(ctx context.Context, productID uint) error
	GetByProduct(ctx context.Context, productID uint) (*UserProductAssignment, error)
}
