package domain

import "time"

// Cart quantity bounds per line.
const (
	CartQuantityMin = 1
	CartQuantityMax = 100
)

// CartItem is one (user, product) cart line. Lines are owned exclusively by
// their user; no cross-user access ever happens.
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"size:64;index;uniqueIndex:uk_cart_user_product" json:"user_id"`
	ProductID int64     `gorm:"uniqueIndex:uk_cart_user_product" json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// TableName Specify table name
func (CartItem) TableName() string {
	return "cart_items"
}
