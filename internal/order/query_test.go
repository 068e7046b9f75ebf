package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietbooks/bookstore/internal/domain"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, db *gorm.DB, userID string, status domain.OrderStatus, createdAt time.Time, productID int64) domain.Order {
	t.Helper()
	o := domain.Order{
		OrderNumber:   fmt.Sprintf("ORD-TEST-%s-%d", userID, createdAt.UnixNano()),
		UserID:        userID,
		Status:        status,
		PaymentMethod: domain.PaymentMethodCOD,
		PaymentStatus: domain.PaymentStatusCOD,
		Total:         130000,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	require.NoError(t, db.Create(&o).Error)
	require.NoError(t, db.Create(&domain.OrderItem{
		OrderID:   o.ID,
		ProductID: productID,
		Quantity:  1,
		UnitPrice: 100000,
		Subtotal:  100000,
	}).Error)
	return o
}

func TestListOrdersPagination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := seedProduct(t, env.db, domain.Product{Title: "A", Price: 100000, Stock: 100, IsActive: true})

	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 23; i++ {
		seedOrder(t, env.db, "u1", domain.OrderStatusPending, base.Add(time.Duration(i)*time.Minute), book.ID)
	}
	// Another user's orders never leak into the listing.
	seedOrder(t, env.db, "u2", domain.OrderStatusPending, base, book.ID)

	query := NewQuery(env.db, NewGormRepository(env.db))

	page1, err := query.ListOrders(ctx, "u1", Filter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(23), page1.TotalCount)
	assert.Len(t, page1.Orders, 10)
	assert.Equal(t, 3, page1.TotalPages())
	assert.True(t, page1.HasNextPage())

	// Newest first.
	assert.True(t, page1.Orders[0].CreatedAt.After(page1.Orders[9].CreatedAt))

	page3, err := query.ListOrders(ctx, "u1", Filter{}, 3, 10)
	require.NoError(t, err)
	assert.Len(t, page3.Orders, 3)
	assert.False(t, page3.HasNextPage())

	for _, summary := range page1.Orders {
		assert.Equal(t, 1, summary.ItemCount)
	}
}

func TestListOrdersFilters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := seedProduct(t, env.db, domain.Product{Title: "A", Price: 100000, Stock: 100, IsActive: true})

	now := time.Now()
	seedOrder(t, env.db, "u1", domain.OrderStatusPending, now.Add(-72*time.Hour), book.ID)
	seedOrder(t, env.db, "u1", domain.OrderStatusDelivered, now.Add(-48*time.Hour), book.ID)
	seedOrder(t, env.db, "u1", domain.OrderStatusDelivered, now.Add(-time.Hour), book.ID)

	query := NewQuery(env.db, NewGormRepository(env.db))

	delivered, err := query.ListOrders(ctx, "u1", Filter{Status: domain.OrderStatusDelivered}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), delivered.TotalCount)

	recent, err := query.ListOrders(ctx, "u1", Filter{From: now.Add(-24 * time.Hour)}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), recent.TotalCount)

	window, err := query.ListOrders(ctx, "u1", Filter{
		From: now.Add(-96 * time.Hour),
		To:   now.Add(-36 * time.Hour),
	}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), window.TotalCount)
}

func TestGetOrderDetails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := seedProduct(t, env.db, domain.Product{Title: "Nhà Giả Kim", Author: "Paulo Coelho", Price: 79000, Stock: 100, IsActive: true})
	o := seedOrder(t, env.db, "u1", domain.OrderStatusPending, time.Now(), book.ID)

	now := time.Now()
	require.NoError(t, env.db.Create(&domain.Payment{
		OrderID: o.ID, Amount: 130000, Method: domain.PaymentMethodCOD,
		Status: domain.PaymentStatusPaid, PaidAt: now,
	}).Error)
	require.NoError(t, env.db.Create(&domain.Payment{
		OrderID: o.ID, Amount: 130000, Method: domain.PaymentMethodCOD,
		Status: domain.PaymentStatusFailed, PaidAt: now.Add(-time.Hour),
	}).Error)

	query := NewQuery(env.db, NewGormRepository(env.db))

	details, err := query.GetOrderDetails(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, details.Order.OrderNumber)
	require.Len(t, details.Items, 1)
	assert.Equal(t, "Nhà Giả Kim", details.Items[0].Title)
	assert.Equal(t, "Paulo Coelho", details.Items[0].Author)

	// Payments come back in payment date order.
	require.Len(t, details.Payments, 2)
	assert.Equal(t, domain.PaymentStatusFailed, details.Payments[0].Status)
	assert.Equal(t, domain.PaymentStatusPaid, details.Payments[1].Status)

	// Ownership is enforced as not-found, never forbidden.
	_, err = query.GetOrderDetails(ctx, "u2", o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetOrderDetailsDeletedProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := seedProduct(t, env.db, domain.Product{Title: "Gone", Price: 50000, Stock: 10, IsActive: true})
	o := seedOrder(t, env.db, "u1", domain.OrderStatusDelivered, time.Now(), book.ID)

	require.NoError(t, env.db.Delete(&domain.Product{}, book.ID).Error)

	query := NewQuery(env.db, NewGormRepository(env.db))
	details, err := query.GetOrderDetails(ctx, "u1", o.ID)
	require.NoError(t, err)

	// The immutable line survives with its price snapshot, display data blank.
	require.Len(t, details.Items, 1)
	assert.Equal(t, "", details.Items[0].Title)
	assert.Equal(t, int64(100000), details.Items[0].UnitPrice)
}

func TestExportOrders(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := seedProduct(t, env.db, domain.Product{Title: "A", Price: 100000, Stock: 100, IsActive: true})

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		seedOrder(t, env.db, "u1", domain.OrderStatusPending, base.Add(time.Duration(i)*time.Minute), book.ID)
	}

	query := NewQuery(env.db, NewGormRepository(env.db))
	summaries, err := query.ExportOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, summaries, 15)
	assert.True(t, summaries[0].CreatedAt.After(summaries[14].CreatedAt))
}
