package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartAddMergesSameProduct(t *testing.T) {
	cart := NewCart(nil)

	cart.Add(Item{ProductID: 1, Quantity: 2, Price: "8.50", Label: "Gants nitrile"})
	cart.Add(Item{ProductID: 1, Quantity: 3, Price: "9.00", Label: "Gants nitrile"})

	items := cart.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	// 单价以最新加入的为准
	assert.Equal(t, "9.00", items[0].Price)
}

func TestCartAddKeepsInsertionOrder(t *testing.T) {
	cart := NewCart(nil)

	cart.Add(Item{ProductID: 3, Quantity: 1})
	cart.Add(Item{ProductID: 1, Quantity: 1})
	cart.Add(Item{ProductID: 2, Quantity: 1})
	cart.Add(Item{ProductID: 1, Quantity: 4})

	items := cart.Items()
	assert.Equal(t, []uint{3, 1, 2}, []uint{items[0].ProductID, items[1].ProductID, items[2].ProductID})
	assert.Equal(t, 5, items[1].Quantity)
}

func TestCartRemoveAbsentIsNoop(t *testing.T) {
	cart := NewCart([]Item{{ProductID: 1, Quantity: 2}})

	cart.Remove(99)

	assert.Equal(t, 1, cart.Len())
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCart([]Item{{ProductID: 1, Quantity: 2}})

	cart.SetQuantity(1, 7)
	assert.Equal(t, 7, cart.Items()[0].Quantity)

	// 数量归零等价于删除
	cart.SetQuantity(1, 0)
	assert.Equal(t, 0, cart.Len())
}

func TestCartSetQuantityNegativeRemoves(t *testing.T) {
	cart := NewCart([]Item{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}})

	cart.SetQuantity(2, -3)

	items := cart.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, uint(1), items[0].ProductID)
}

func TestCartClear(t *testing.T) {
	cart := NewCart([]Item{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}})

	cart.Clear()

	assert.Equal(t, 0, cart.Len())
	assert.Empty(t, cart.Items())
}

func TestCartItemsReturnsCopy(t *testing.T) {
	cart := NewCart([]Item{{ProductID: 1, Quantity: 2}})

	items := cart.Items()
	items[0].Quantity = 99

	assert.Equal(t, 2, cart.Items()[0].Quantity)
}
