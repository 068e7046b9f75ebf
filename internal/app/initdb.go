package app

import (
	"time"

	"github.com/vietbooks/bookstore/internal/domain"
	"go.uber.org/zap"
)

type settingSchema struct {
	category string
	name     string
	value    string
	remark   string
}

var defaultSettings = []settingSchema{
	{"cart", "purge_days", "90", "Cart lines older than this many days are removed by the daily job"},
	{"orders", "default_page_size", "10", "Default page size for order history listings"},
	{"notify", "workers", "8", "Worker pool size for notification writes"},
}

// checkSettings seeds missing runtime settings with their defaults.
func (a *Application) checkSettings() {
	for sortid, schema := range defaultSettings {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", schema.category, schema.name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				Sort:   sortid,
				Type:   schema.category,
				Name:   schema.name,
				Value:  schema.value,
				Remark: schema.remark,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.category+"."+schema.name),
				zap.String("default", schema.value))
		}
	}
}

// checkProducts seeds a small demo catalog on an empty database.
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{Title: "Dế Mèn Phiêu Lưu Ký", Author: "Tô Hoài", CategoryName: "Văn học thiếu nhi", Price: 85000, Stock: 120, IsActive: true},
		{Title: "Nhà Giả Kim", Author: "Paulo Coelho", CategoryName: "Tiểu thuyết", Price: 79000, Stock: 200, IsActive: true},
		{Title: "Tuổi Trẻ Đáng Giá Bao Nhiêu", Author: "Rosie Nguyễn", CategoryName: "Kỹ năng sống", Price: 90000, Stock: 150, IsActive: true},
		{Title: "Số Đỏ", Author: "Vũ Trọng Phụng", CategoryName: "Văn học Việt Nam", Price: 68000, Stock: 80, IsActive: true},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("title = ?", p.Title).Count(&count)
		if count == 0 {
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("title", p.Title), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("title", p.Title))
			}
		}
	}
}
