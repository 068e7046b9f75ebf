package domain

import "time"

// Notification is written when order events fire. Delivery to the user
// (mail, push) happens elsewhere.
type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"size:64;index" json:"user_id"`
	Kind      string    `gorm:"size:32" json:"kind"`
	Title     string    `gorm:"size:200" json:"title"`
	Payload   string    `gorm:"size:2048" json:"payload"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (Notification) TableName() string {
	return "notifications"
}
