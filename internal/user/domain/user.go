// Package domain 用户上下文的领域模型
package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Role 用户角色
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ErrNotFound 用户不存在
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken 邮箱已被注册
var ErrEmailTaken = errors.New("email already registered")

// User 用户实体
type User struct {
	gorm.Model
	// 邮箱，登录标识
	Email string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	// 显示名称
	Name string `gorm:"column:name;type:varchar(100)" json:"name"`
	// bcrypt 密码哈希
	PasswordHash string `gorm:"column:password_hash;type:varchar(100);not null" json:"-"`
	// 角色：ADMIN 或 USER
	Role Role `gorm:"column:role;type:varchar(10);not null;default:'USER'" json:"role"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserRepository 用户仓储接口
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}
