package domain

import "context"

// Identity 已认证的调用者身份
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

// IsAdmin 是否具有管理员角色
func (i Identity) IsAdmin() bool { return i.Role == "ADMIN" }

type identityContextKey struct{}

// WithIdentity 将身份写入 context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFrom 从 context 提取身份
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
