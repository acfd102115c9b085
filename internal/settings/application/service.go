// Package application 系统设置应用服务
package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/medsupply/internal/settings/domain"
	"github.com/wyfcoding/medsupply/pkg/cache"
	"github.com/wyfcoding/medsupply/pkg/logger"
)

const (
	cacheKeyPrefix = "medsupply:setting:"
	cacheTTL       = 5 * time.Minute
)

// SettingApplicationService 设置应用服务，读路径带 Redis 缓存
type SettingApplicationService struct {
	repo  domain.SettingRepository
	cache *cache.RedisCache
}

// NewSettingApplicationService 创建设置应用服务，cache 允许为 nil
func NewSettingApplicationService(repo domain.SettingRepository, c *cache.RedisCache) *SettingApplicationService {
	return &SettingApplicationService{repo: repo, cache: c}
}

// GetSetting 查询设置项，优先命中缓存
func (s *SettingApplicationService) GetSetting(ctx context.Context, key string) (*domain.Setting, error) {
	if s.cache != nil {
		var cached domain.Setting
		hit, err := s.cache.GetJSON(ctx, cacheKeyPrefix+key, &cached)
		if err != nil {
			logger.Warn(ctx, "Setting cache read failed", "key", key, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKeyPrefix+key, setting, cacheTTL); err != nil {
			logger.Warn(ctx, "Setting cache write failed", "key", key, "error", err)
		}
	}
	return setting, nil
}

// UpdateSetting 写入设置项并使缓存失效
func (s *SettingApplicationService) UpdateSetting(ctx context.Context, key, value string) (*domain.Setting, error) {
	setting, err := s.repo.Upsert(ctx, key, value)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKeyPrefix+key); err != nil {
			logger.Warn(ctx, "Setting cache invalidation failed", "key", key, "error", err)
		}
	}
	return setting, nil
}

// EmailNotificationsEnabled 邮件通知开关。
// 仅当设置项存在且取值恰为 "true" 时开启；设置缺失、读取失败或
// 任何其他取值都视为关闭。
func (s *SettingApplicationService) EmailNotificationsEnabled(ctx context.Context) bool {
	setting, err := s.GetSetting(ctx, domain.KeyEmailNotifications)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingNotFound) {
			logger.Warn(ctx, "Failed to read email notification flag", "error", err)
		}
		return false
	}
	return setting.Value == "true"
}
