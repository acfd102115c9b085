// Package localfile 购物车的本地文件持久化
package localfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wyfcoding/medsupply/internal/cart/domain"
)

// Store 将购物车序列化为 JSON 文件，文件名由固定键派生
type Store struct {
	path string
}

// NewStore 在 dir 目录下创建购物车文件存储
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, domain.StorageKey+".json")}
}

// Path 返回持久化文件路径
func (s *Store) Path() string { return s.path }

// Load 读取持久化的行项目。文件不存在或内容损坏时返回空列表，
// 损坏内容视同首次使用，不报错。
func (s *Store) Load(_ context.Context) ([]domain.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Item{}, nil
		}
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return []domain.Item{}, nil
	}
	return items, nil
}

// Save 原子写入整个列表：先写临时文件再改名
func (s *Store) Save(_ context.Context, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}
