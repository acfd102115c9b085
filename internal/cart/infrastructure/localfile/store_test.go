package localfile

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/medsupply/internal/cart/domain"
)

func TestStoreLoadMissingFileReturnsEmpty(t *testing.T) {
	store := NewStore(t.TempDir())

	items, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	saved := []domain.Item{
		{ProductID: 1, Quantity: 3, Price: "8.50", Label: "Gants nitrile taille M"},
		{ProductID: 7, Quantity: 1, Price: "0.35", Label: "Seringue 5 ml"},
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.Item{{ProductID: 1, Quantity: 3}}))
	require.NoError(t, store.Save(ctx, []domain.Item{{ProductID: 2, Quantity: 1}}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, uint(2), loaded[0].ProductID)
}

func TestStoreCorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	items, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStoreUsesFixedKeyFilename(t *testing.T) {
	store := NewStore("/tmp/cartdata")

	assert.Equal(t, "/tmp/cartdata/medical_consumable_cart.json", store.Path())
}
