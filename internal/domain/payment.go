package domain

import "time"

// Payment is an append-only history row produced by the external payment
// collaborator. The fulfillment core only reads it.
type Payment struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64     `gorm:"index" json:"order_id"`
	Method        string    `gorm:"size:20" json:"method"`
	Status        string    `gorm:"size:20" json:"status"`
	Amount        int64     `json:"amount"`
	TransactionID string    `gorm:"size:128" json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
}

// TableName Specify table name
func (Payment) TableName() string {
	return "payments"
}
