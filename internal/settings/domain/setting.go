// Package domain 系统设置领域模型
package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// KeyEmailNotifications 邮件通知总开关
const KeyEmailNotifications = "email_notifications"

// ErrSettingNotFound 设置项不存在
var ErrSettingNotFound = errors.New("setting not found")

// Setting 键值形式的系统设置
type Setting struct {
	gorm.Model
	Key   string `gorm:"type:varchar(64);uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:varchar(255);not null" json:"value"`
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}

// SettingRepository 设置仓储接口
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, key, value string) (*Setting, error)
}
