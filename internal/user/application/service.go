// Package application 用户应用服务
package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/medsupply/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidRole 非法的角色取值
var ErrInvalidRole = errors.New("role must be ADMIN or USER")

// UserApplicationService 用户应用服务
type UserApplicationService struct {
	repo domain.UserRepository
}

// NewUserApplicationService 创建用户应用服务
func NewUserApplicationService(repo domain.UserRepository) *UserApplicationService {
	return &UserApplicationService{repo: repo}
}

// CreateUser 创建用户，密码以 bcrypt 哈希存储
func (s *UserApplicationService) CreateUser(ctx context.Context, email, name, password string, role domain.Role) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser 按 ID 获取用户
func (s *UserApplicationService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers 列出全部用户
func (s *UserApplicationService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// ListAdmins 列出管理员，用于通知收件人
func (s *UserApplicationService) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	return s.repo.ListByRole(ctx, domain.RoleAdmin)
}
