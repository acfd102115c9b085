package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/medsupply/internal/cart/domain"
)

// fakeStore 记录每次保存的内容
type fakeStore struct {
	initial   []domain.Item
	saved     [][]domain.Item
	saveErr   error
	loadErr   error
	loadCalls int
}

func (f *fakeStore) Load(_ context.Context) ([]domain.Item, error) {
	f.loadCalls++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.initial, nil
}

func (f *fakeStore) Save(_ context.Context, items []domain.Item) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, items)
	return nil
}

func TestNewServiceLoadsPersistedCart(t *testing.T) {
	store := &fakeStore{initial: []domain.Item{{ProductID: 1, Quantity: 2}}}

	svc, err := NewCartApplicationService(context.Background(), store)

	require.NoError(t, err)
	assert.Equal(t, 1, store.loadCalls)
	assert.Len(t, svc.Items(), 1)
}

func TestNewServicePropagatesLoadError(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("disk gone")}

	_, err := NewCartApplicationService(context.Background(), store)

	assert.Error(t, err)
}

func TestEveryMutationPersists(t *testing.T) {
	store := &fakeStore{}
	svc, err := NewCartApplicationService(context.Background(), store)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, domain.Item{ProductID: 1, Quantity: 2}))
	require.NoError(t, svc.SetQuantity(ctx, 1, 5))
	require.NoError(t, svc.Remove(ctx, 1))
	require.NoError(t, svc.Clear(ctx))

	require.Len(t, store.saved, 4)
	assert.Equal(t, 2, store.saved[0][0].Quantity)
	assert.Equal(t, 5, store.saved[1][0].Quantity)
	assert.Empty(t, store.saved[2])
	assert.Empty(t, store.saved[3])
}

func TestMutationReturnsSaveError(t *testing.T) {
	store := &fakeStore{}
	svc, err := NewCartApplicationService(context.Background(), store)
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	err = svc.Add(context.Background(), domain.Item{ProductID: 1, Quantity: 1})

	assert.Error(t, err)
}
