// Package application 认证应用服务
package application

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/wyfcoding/medsupply/internal/auth/domain"
	userdomain "github.com/wyfcoding/medsupply/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 凭证错误，不区分邮箱不存在与密码错误
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthApplicationService 认证应用服务
type AuthApplicationService struct {
	users  userdomain.UserRepository
	tokens *authdomain.TokenManager
}

// NewAuthApplicationService 创建认证应用服务
func NewAuthApplicationService(users userdomain.UserRepository, tokens *authdomain.TokenManager) *AuthApplicationService {
	return &AuthApplicationService{users: users, tokens: tokens}
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *userdomain.User
}

// Login 校验邮箱与密码，签发会话令牌
func (s *AuthApplicationService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
