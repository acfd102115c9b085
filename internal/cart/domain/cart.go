// Package domain 客户端购物车的领域模型。
// 购物车常驻客户端进程，不产生任何网络调用。
package domain

import "context"

// StorageKey 本地持久化使用的固定命名空间键
const StorageKey = "medical_consumable_cart"

// Item 购物车行项目
type Item struct {
	ProductID uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	// 加入购物车时的单价快照
	Price string `json:"price"`
	// 展示用标签
	Label string `json:"label"`
}

// Cart 待提交的订单行集合，保持插入顺序
type Cart struct {
	items []Item
}

// NewCart 从已有行项目构建购物车
func NewCart(items []Item) *Cart {
	return &Cart{items: items}
}

// Items 返回行项目副本，保持顺序
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len 行项目数量
func (c *Cart) Len() int { return len(c.items) }

// Add 加入行项目。同一商品已存在时数量累加、单价覆盖为最新值，
// 否则追加新行。本地不设数量上限，库存由服务端在提交时校验。
func (c *Cart) Add(item Item) {
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += item.Quantity
			c.items[i].Price = item.Price
			c.items[i].Label = item.Label
			return
		}
	}
	c.items = append(c.items, item)
}

// Remove 删除指定商品的行项目，不存在时为 no-op
func (c *Cart) Remove(productID uint) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// SetQuantity 覆盖指定商品的数量；数量 ≤ 0 时等价于 Remove
func (c *Cart) SetQuantity(productID uint, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Clear 清空购物车
func (c *Cart) Clear() {
	c.items = nil
}

// Store 购物车本地持久化接口
type Store interface {
	// Load 读取持久化的行项目，首次使用返回空列表
	Load(ctx context.Context) ([]Item, error)
	// Save 原样持久化整个列表
	Save(ctx context.Context, items []Item) error
}
