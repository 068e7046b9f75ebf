package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD          = "COD"
	PaymentMethodStripe       = "Stripe"
	PaymentMethodBankTransfer = "BankTransfer"
)

// Payment status values as displayed to the customer.
const (
	PaymentStatusPending  = "Pending"
	PaymentStatusPaid     = "Paid"
	PaymentStatusCOD      = "COD"
	PaymentStatusFailed   = "Failed"
	PaymentStatusRefunded = "Refunded"
)

// statusTransitions is the full edge set of the order state machine.
// Cancellation is only reachable from Pending; forward edges never skip.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// Order is created only by the order engine's atomic commit. After creation
// the only mutable fields are Status and TrackingNumber.
type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string      `gorm:"size:64;uniqueIndex" json:"order_number"`
	UserID          string      `gorm:"size:64;index" json:"user_id"`
	Status          OrderStatus `gorm:"size:20;index" json:"status"`
	PaymentMethod   string      `gorm:"size:20" json:"payment_method"`
	PaymentStatus   string      `gorm:"size:20" json:"payment_status"`
	ShippingName    string      `gorm:"size:100" json:"shipping_name"`
	ShippingPhone   string      `gorm:"size:20" json:"shipping_phone"`
	ShippingEmail   string      `gorm:"size:256" json:"shipping_email"`
	ShippingAddress string      `gorm:"size:500" json:"shipping_address"`
	Notes           string      `gorm:"size:1000" json:"notes"`
	TrackingNumber  string      `gorm:"size:64" json:"tracking_number"`
	Total           int64       `json:"total"`
	CreatedAt       time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is an immutable order line with the unit price snapshotted at
// order time, decoupled from later catalog price changes.
type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"index" json:"order_id"`
	ProductID int64 `gorm:"index" json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	Subtotal  int64 `json:"subtotal"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}
