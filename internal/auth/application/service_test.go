package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authdomain "github.com/wyfcoding/medsupply/internal/auth/domain"
	userdomain "github.com/wyfcoding/medsupply/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	byEmail map[string]*userdomain.User
}

func (r *fakeUserRepo) Save(_ context.Context, _ *userdomain.User) error { return nil }
func (r *fakeUserRepo) GetByID(_ context.Context, _ uint) (*userdomain.User, error) {
	return nil, userdomain.ErrNotFound
}
func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, userdomain.ErrNotFound
	}
	return user, nil
}
func (r *fakeUserRepo) List(_ context.Context) ([]*userdomain.User, error) { return nil, nil }
func (r *fakeUserRepo) ListByRole(_ context.Context, _ userdomain.Role) ([]*userdomain.User, error) {
	return nil, nil
}

func newLoginService(t *testing.T) *AuthApplicationService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUserRepo{byEmail: map[string]*userdomain.User{
		"admin@medsupply.local": {
			Model:        gorm.Model{ID: 1},
			Email:        "admin@medsupply.local",
			Name:         "Administrateur",
			PasswordHash: string(hash),
			Role:         userdomain.RoleAdmin,
		},
	}}
	tokens := authdomain.NewTokenManager("test-secret", time.Hour)
	return NewAuthApplicationService(repo, tokens)
}

func TestLoginSuccess(t *testing.T) {
	svc := newLoginService(t)

	result, err := svc.Login(context.Background(), "admin@medsupply.local", "correct horse")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, userdomain.RoleAdmin, result.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newLoginService(t)

	_, err := svc.Login(context.Background(), "admin@medsupply.local", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc := newLoginService(t)

	_, err := svc.Login(context.Background(), "nobody@medsupply.local", "whatever")

	// 与密码错误返回同一错误，不暴露账号是否存在
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
