package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/medsupply/internal/catalog/domain"
)

type fakeProductRepo struct {
	products   map[uint]*domain.Product
	nextID     uint
	lastFilter domain.ProductFilter
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint]*domain.Product)}
}

func (r *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uint) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) List(_ context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	r.lastFilter = filter
	var out []*domain.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

type fakeCategoryRepo struct {
	categories map[uint]*domain.Category
	nextID     uint
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uint]*domain.Category)}
}

func (r *fakeCategoryRepo) Save(_ context.Context, c *domain.Category) error {
	for _, existing := range r.categories {
		if existing.Name == c.Name && existing.ID != c.ID {
			return domain.ErrCategoryNameTaken
		}
	}
	if c.ID == 0 {
		r.nextID++
		c.ID = r.nextID
	}
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id uint) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

type fakeAssignmentRepo struct {
	byProduct map[uint]uint
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{byProduct: make(map[uint]uint)}
}

func (r *fakeAssignmentRepo) Assign(_ context.Context, userID, productID uint) error {
	if _, ok := r.byProduct[productID]; ok {
		return &domain.AlreadyAssignedError{ProductID: productID}
	}
	r.byProduct[productID] = userID
	return nil
}

func (r *fakeAssignmentRepo) Unassign(_ context.Context, productID uint) error {
	if _, ok := r.byProduct[productID]; !ok {
		return domain.ErrAssignmentNotFound
	}
	delete(r.byProduct, productID)
	return nil
}

func (r *fakeAssignmentRepo) GetByProduct(_ context.Context, productID uint) (*domain.UserProductAssignment, error) {
	userID, ok := r.byProduct[productID]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	return &domain.UserProductAssignment{UserID: userID, ProductID: productID}, nil
}

func newTestService() (*CatalogApplicationService, *fakeProductRepo, *fakeCategoryRepo, *fakeAssignmentRepo) {
	products := newFakeProductRepo()
	categories := newFakeCategoryRepo()
	assignments := newFakeAssignmentRepo()
	return NewCatalogApplicationService(products, categories, assignments), products, categories, assignments
}

func TestCreateProductRequiresCategory(t *testing.T) {
	svc, _, categories, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Gants", CategoryID: 99})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	category, err := svc.CreateCategory(ctx, "Gants")
	require.NoError(t, err)
	require.NotZero(t, categories.categories[category.ID])

	product, err := svc.CreateProduct(ctx, ProductInput{
		Name:       "Gants nitrile",
		Price:      decimal.RequireFromString("8.50"),
		Stock:      100,
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gants nitrile", product.Name)
}

func TestListProductsVisibilityFilter(t *testing.T) {
	svc, products, _, _ := newTestService()
	ctx := context.Background()

	// 非管理员带上分配过滤
	_, err := svc.ListProducts(ctx, "", 0, 7, false)
	require.NoError(t, err)
	assert.Equal(t, uint(7), products.lastFilter.AssignedUserID)

	// 管理员不过滤
	_, err = svc.ListProducts(ctx, "gants", 2, 7, true)
	require.NoError(t, err)
	assert.Zero(t, products.lastFilter.AssignedUserID)
	assert.Equal(t, "gants", products.lastFilter.Search)
	assert.Equal(t, uint(2), products.lastFilter.CategoryID)
}

func TestAssignProduct(t *testing.T) {
	svc, _, _, assignments := newTestService()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Gants")
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, ProductInput{Name: "Gants", CategoryID: category.ID})
	require.NoError(t, err)

	require.NoError(t, svc.AssignProduct(ctx, product.ID, 7))
	assert.Equal(t, uint(7), assignments.byProduct[product.ID])

	// 重复分配冲突
	err = svc.AssignProduct(ctx, product.ID, 8)
	var assignedErr *domain.AlreadyAssignedError
	assert.ErrorAs(t, err, &assignedErr)

	// 不存在的商品
	err = svc.AssignProduct(ctx, 999, 7)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUnassignProductNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.UnassignProduct(context.Background(), 42)

	assert.ErrorIs(t, err, domain.ErrAssignmentNotFound)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "Gants")
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, "Gants")
	assert.ErrorIs(t, err, domain.ErrCategoryNameTaken)
}

func TestUpdateProductChecksNewCategory(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Gants")
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, ProductInput{Name: "Gants", CategoryID: category.ID})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, product.ID, ProductInput{Name: "Gants", CategoryID: 999})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}
