package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/wyfcoding/medsupply/internal/catalog/domain"
	settingsdomain "github.com/wyfcoding/medsupply/internal/settings/domain"
	userdomain "github.com/wyfcoding/medsupply/internal/user/domain"
)

type memUserRepo struct {
	users  map[string]*userdomain.User
	nextID uint
}

func (r *memUserRepo) Save(_ context.Context, user *userdomain.User) error {
	if _, ok := r.users[user.Email]; ok {
		return userdomain.ErrEmailTaken
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = user
	return nil
}
func (r *memUserRepo) GetByID(_ context.Context, _ uint) (*userdomain.User, error) {
	return nil, userdomain.ErrNotFound
}
func (r *memUserRepo) GetByEmail(_ context.Context, _ string) (*userdomain.User, error) {
	return nil, userdomain.ErrNotFound
}
func (r *memUserRepo) List(_ context.Context) ([]*userdomain.User, error) { return nil, nil }
func (r *memUserRepo) ListByRole(_ context.Context, _ userdomain.Role) ([]*userdomain.User, error) {
	return nil, nil
}

type memCategoryRepo struct {
	byName map[string]*catalogdomain.Category
	nextID uint
}

func (r *memCategoryRepo) Save(_ context.Context, c *catalogdomain.Category) error {
	if _, ok := r.byName[c.Name]; ok {
		return catalogdomain.ErrCategoryNameTaken
	}
	r.nextID++
	c.ID = r.nextID
	r.byName[c.Name] = c
	return nil
}
func (r *memCategoryRepo) GetByID(_ context.Context, _ uint) (*catalogdomain.Category, error) {
	return nil, catalogdomain.ErrCategoryNotFound
}
func (r *memCategoryRepo) List(_ context.Context) ([]*catalogdomain.Category, error) {
	var out []*catalogdomain.Category
	for _, c := range r.byName {
		out = append(out, c)
	}
	return out, nil
}
func (r *memCategoryRepo) Delete(_ context.Context, _ uint) error { return nil }

type memProductRepo struct {
	products []*catalogdomain.Product
	nextID   uint
}

func (r *memProductRepo) Save(_ context.Context, p *catalogdomain.Product) error {
	r.nextID++
	p.ID = r.nextID
	r.products = append(r.products, p)
	return nil
}
func (r *memProductRepo) GetByID(_ context.Context, _ uint) (*catalogdomain.Product, error) {
	return nil, catalogdomain.ErrProductNotFound
}
func (r *memProductRepo) List(_ context.Context, _ catalogdomain.ProductFilter) ([]*catalogdomain.Product, error) {
	return r.products, nil
}
func (r *memProductRepo) Delete(_ context.Context, _ uint) error { return nil }

type memSettingRepo struct {
	values map[string]string
}

func (r *memSettingRepo) Get(_ context.Context, key string) (*settingsdomain.Setting, error) {
	value, ok := r.values[key]
	if !ok {
		return nil, settingsdomain.ErrSettingNotFound
	}
	return &settingsdomain.Setting{Key: key, Value: value}, nil
}
func (r *memSettingRepo) Upsert(_ context.Context, key, value string) (*settingsdomain.Setting, error) {
	r.values[key] = value
	return &settingsdomain.Setting{Key: key, Value: value}, nil
}

func TestSeedIsIdempotent(t *testing.T) {
	users := &memUserRepo{users: make(map[string]*userdomain.User)}
	categories := &memCategoryRepo{byName: make(map[string]*catalogdomain.Category)}
	products := &memProductRepo{}
	settings := &memSettingRepo{values: make(map[string]string)}
	ctx := context.Background()

	require.NoError(t, seed(ctx, users, categories, products, settings))
	userCount := len(users.users)
	categoryCount := len(categories.byName)
	productCount := len(products.products)
	require.Greater(t, productCount, 0)

	// 重复执行不产生重复行
	require.NoError(t, seed(ctx, users, categories, products, settings))
	assert.Equal(t, userCount, len(users.users))
	assert.Equal(t, categoryCount, len(categories.byName))
	assert.Equal(t, productCount, len(products.products))
	assert.Equal(t, "true", settings.values[settingsdomain.KeyEmailNotifications])
}
