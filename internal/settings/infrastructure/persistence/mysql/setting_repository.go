// Package mysql 设置仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/medsupply/internal/settings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingRepositoryImpl struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓储实例
func NewSettingRepository(db *gorm.DB) domain.SettingRepository {
	return &settingRepositoryImpl{db: db}
}

// Get 按键查询设置项
func (r *settingRepositoryImpl) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var setting domain.Setting
	err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &setting, nil
}

// Upsert 写入设置项，键冲突时覆盖值
func (r *settingRepositoryImpl) Upsert(ctx context.Context, key, value string) (*domain.Setting, error) {
	setting := domain.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}
	return r.Get(ctx, key)
}
