package order

import (
	"context"
	"time"

	"github.com/vietbooks/bookstore/internal/domain"
	"gorm.io/gorm"
)

// Filter narrows an order listing.
type Filter struct {
	Status domain.OrderStatus
	From   time.Time
	To     time.Time
}

// Summary is one row of the order history listing.
type Summary struct {
	OrderID           int64              `json:"order_id" gorm:"column:order_id" csv:"-"`
	OrderNumber       string             `json:"order_number" gorm:"column:order_number" csv:"order_number"`
	CreatedAt         time.Time          `json:"created_at" gorm:"column:created_at" csv:"ordered_at"`
	Total             int64              `json:"total" gorm:"column:total" csv:"total"`
	Status            domain.OrderStatus `json:"status" gorm:"column:status" csv:"status"`
	PaymentMethod     string             `json:"payment_method" gorm:"column:payment_method" csv:"payment_method"`
	PaymentStatus     string             `json:"payment_status" gorm:"column:payment_status" csv:"payment_status"`
	ItemCount         int                `json:"item_count" gorm:"column:item_count" csv:"item_count"`
	FirstProductImage string             `json:"first_product_image" gorm:"column:first_product_image" csv:"-"`
}

// Page is one page of order summaries plus the pagination math inputs.
type Page struct {
	Orders     []Summary `json:"orders"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

// TotalPages rounds the page count up.
func (p *Page) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.PageSize) - 1) / int64(p.PageSize))
}

func (p *Page) HasNextPage() bool {
	return p.Page < p.TotalPages()
}

// ItemView is an order line joined live with catalog display data.
type ItemView struct {
	OrderItemID int64  `json:"order_item_id" gorm:"column:order_item_id"`
	ProductID   int64  `json:"product_id" gorm:"column:product_id"`
	Title       string `json:"title" gorm:"column:title"`
	Author      string `json:"author" gorm:"column:author"`
	ImageUrl    string `json:"image_url" gorm:"column:image_url"`
	Quantity    int    `json:"quantity" gorm:"column:quantity"`
	UnitPrice   int64  `json:"unit_price" gorm:"column:unit_price"`
	Subtotal    int64  `json:"subtotal" gorm:"column:subtotal"`
}

// Details is the aggregate returned for the order detail page: header, lines
// and payment history in one value, however many fetches produced it.
type Details struct {
	Order    domain.Order     `json:"order"`
	Items    []ItemView       `json:"items"`
	Payments []domain.Payment `json:"payments"`
}

// Query is the read side of the order engine.
type Query struct {
	db     *gorm.DB
	orders Repository
}

func NewQuery(db *gorm.DB, orders Repository) *Query {
	return &Query{db: db, orders: orders}
}

const summarySelect = `orders.id AS order_id,
orders.order_number,
orders.created_at,
orders.total,
orders.status,
orders.payment_method,
orders.payment_status,
(SELECT COUNT(*) FROM order_items WHERE order_items.order_id = orders.id) AS item_count,
COALESCE((SELECT p.image_url FROM order_items oi JOIN products p ON p.id = oi.product_id
	WHERE oi.order_id = orders.id ORDER BY oi.id LIMIT 1), '') AS first_product_image`

func (q *Query) filtered(ctx context.Context, userID string, filter Filter) *gorm.DB {
	db := q.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("orders.user_id = ?", userID)
	if filter.Status != "" {
		db = db.Where("orders.status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		db = db.Where("orders.created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("orders.created_at <= ?", filter.To)
	}
	return db
}

// ListOrders returns a page of the user's order summaries, newest first,
// with the total matching count for pagination math.
func (q *Query) ListOrders(ctx context.Context, userID string, filter Filter, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := q.filtered(ctx, userID, filter).Count(&total).Error; err != nil {
		return nil, &domain.TransientError{Op: "order.list", Err: err}
	}

	summaries := make([]Summary, 0, pageSize)
	err := q.filtered(ctx, userID, filter).
		Select(summarySelect).
		Order("orders.created_at DESC, orders.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&summaries).Error
	if err != nil {
		return nil, &domain.TransientError{Op: "order.list", Err: err}
	}

	return &Page{
		Orders:     summaries,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// GetOrderDetails returns the order header, its lines joined with live
// product data, and the payment history ordered by payment date. Orders not
// owned by the requester report ErrNotFound.
func (q *Query) GetOrderDetails(ctx context.Context, userID string, orderID int64) (*Details, error) {
	o, err := q.orders.GetByUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	var items []ItemView
	err = q.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(`oi.id AS order_item_id, oi.product_id, oi.quantity, oi.unit_price, oi.subtotal,
COALESCE(p.title, '') AS title, COALESCE(p.author, '') AS author, COALESCE(p.image_url, '') AS image_url`).
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id = ?", o.ID).
		Order("oi.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, &domain.TransientError{Op: "order.details", Err: err}
	}

	payments, err := q.orders.GetPayments(ctx, o.ID)
	if err != nil {
		return nil, &domain.TransientError{Op: "order.details", Err: err}
	}

	return &Details{Order: *o, Items: items, Payments: payments}, nil
}

// ExportOrders returns the user's full order history, newest first, for the
// CSV download endpoint.
func (q *Query) ExportOrders(ctx context.Context, userID string) ([]Summary, error) {
	var summaries []Summary
	err := q.filtered(ctx, userID, Filter{}).
		Select(summarySelect).
		Order("orders.created_at DESC, orders.id DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, &domain.TransientError{Op: "order.export", Err: err}
	}
	return summaries, nil
}
