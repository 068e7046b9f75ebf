package domain

import "time"

// Product is a catalog entry. The catalog is read-only for the fulfillment
// core except for Stock, which only the order engine mutates inside its
// transactional boundary.
type Product struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"index;size:200" json:"title"`
	Author       string    `gorm:"size:100" json:"author"`
	CategoryName string    `gorm:"size:100" json:"category_name"`
	Price        int64     `json:"price"` // VND, no minor units
	Stock        int       `json:"stock"`
	IsActive     bool      `gorm:"index" json:"is_active"`
	ImageUrl     string    `gorm:"size:1024" json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
