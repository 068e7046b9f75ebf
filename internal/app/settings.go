package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/vietbooks/bookstore/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settingsCacheTTL = time.Minute

// ConfigManager reads runtime settings from the sys_config table with a
// short-lived cache.
type ConfigManager struct {
	db       *gorm.DB
	mu       sync.Mutex
	cache    map[string]string
	loadedAt time.Time
}

func NewConfigManager(db *gorm.DB) *ConfigManager {
	return &ConfigManager{db: db, cache: make(map[string]string)}
}

func (m *ConfigManager) load() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if time.Since(m.loadedAt) < settingsCacheTTL && len(m.cache) > 0 {
		return m.cache
	}

	var rows []domain.SysConfig
	if err := m.db.Find(&rows).Error; err != nil {
		zap.L().Warn("failed to load settings", zap.Error(err))
		return m.cache
	}
	cache := make(map[string]string, len(rows))
	for _, row := range rows {
		cache[row.Type+"."+row.Name] = row.Value
	}
	m.cache = cache
	m.loadedAt = time.Now()
	return m.cache
}

func (m *ConfigManager) GetString(category, key string) string {
	return m.load()[category+"."+key]
}

func (m *ConfigManager) GetInt(category, key string) int {
	return cast.ToInt(m.GetString(category, key))
}

func (m *ConfigManager) GetInt64(category, key string) int64 {
	return cast.ToInt64(m.GetString(category, key))
}

func (m *ConfigManager) GetBool(category, key string) bool {
	return cast.ToBool(m.GetString(category, key))
}
