package cart

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietbooks/bookstore/internal/catalog"
	"github.com/vietbooks/bookstore/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "cart_test.db") + "?_pragma=busy_timeout(10000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db := newTestDB(t)
	return NewService(NewGormRepository(db), catalog.NewGormRepository(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB, p domain.Product) domain.Product {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
		p.UpdatedAt = time.Now()
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	book := seedProduct(t, db, domain.Product{Title: "Nhà Giả Kim", Price: 79000, Stock: 10, IsActive: true})

	totals, err := svc.AddItem(ctx, "u1", book.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, int64(158000), totals.Subtotal)

	// Adding the same product merges into one line.
	totals, err = svc.AddItem(ctx, "u1", book.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, totals.Count)

	var count int64
	db.Model(&domain.CartItem{}).Where("user_id = ?", "u1").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddItemQuantityBounds(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	book := seedProduct(t, db, domain.Product{Title: "Số Đỏ", Price: 68000, Stock: 500, IsActive: true})

	_, err := svc.AddItem(ctx, "u1", book.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, "u1", book.ID, 101)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// Merging may not push the line past the maximum either.
	_, err = svc.AddItem(ctx, "u1", book.ID, 60)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", book.ID, 60)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAddItemInsufficientStock(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	book := seedProduct(t, db, domain.Product{Title: "Dế Mèn Phiêu Lưu Ký", Price: 85000, Stock: 3, IsActive: true})

	_, err := svc.AddItem(ctx, "u1", book.ID, 2)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "u1", book.ID, 2)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, book.ID, stockErr.ProductID)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)
}

func TestAddItemUnavailableProduct(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	inactive := seedProduct(t, db, domain.Product{Title: "Old Edition", Price: 50000, Stock: 5, IsActive: false})

	_, err := svc.AddItem(ctx, "u1", inactive.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddItem(ctx, "u1", 99999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	book := seedProduct(t, db, domain.Product{Title: "Nhà Giả Kim", Price: 79000, Stock: 10, IsActive: true})

	_, err := svc.AddItem(ctx, "u1", book.ID, 2)
	require.NoError(t, err)

	var line domain.CartItem
	require.NoError(t, db.Where("user_id = ?", "u1").First(&line).Error)

	result, err := svc.UpdateQuantity(ctx, "u1", line.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Count)
	assert.Equal(t, int64(79000*7), result.LineSubtotal)

	// Over stock leaves the stored quantity unchanged.
	_, err = svc.UpdateQuantity(ctx, "u1", line.ID, 11)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.NoError(t, db.First(&line, line.ID).Error)
	assert.Equal(t, 7, line.Quantity)

	_, err = svc.UpdateQuantity(ctx, "u1", line.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// A foreign line is invisible.
	_, err = svc.UpdateQuantity(ctx, "u2", line.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	book := seedProduct(t, db, domain.Product{Title: "Nhà Giả Kim", Price: 79000, Stock: 10, IsActive: true})

	_, err := svc.AddItem(ctx, "u1", book.ID, 2)
	require.NoError(t, err)

	var line domain.CartItem
	require.NoError(t, db.Where("user_id = ?", "u1").First(&line).Error)

	totals, err := svc.RemoveItem(ctx, "u1", line.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.Count)

	_, err = svc.RemoveItem(ctx, "u1", line.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	b1 := seedProduct(t, db, domain.Product{Title: "A", Price: 10000, Stock: 10, IsActive: true})
	b2 := seedProduct(t, db, domain.Product{Title: "B", Price: 20000, Stock: 10, IsActive: true})

	_, err := svc.AddItem(ctx, "u1", b1.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", b2.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u2", b1.ID, 1)
	require.NoError(t, err)

	removed, err := svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// The other user's cart is untouched.
	totals, err := svc.Totals(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Count)
}

func TestSnapshotOrderingAndQuote(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	first := seedProduct(t, db, domain.Product{Title: "First", Price: 100000, Stock: 10, IsActive: true})
	second := seedProduct(t, db, domain.Product{Title: "Second", Price: 200000, Stock: 10, IsActive: true})

	repo := NewGormRepository(db)
	now := time.Now()
	require.NoError(t, repo.Save(ctx, &domain.CartItem{UserID: "u1", ProductID: first.ID, Quantity: 1, AddedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Save(ctx, &domain.CartItem{UserID: "u1", ProductID: second.ID, Quantity: 2, AddedAt: now}))

	snap, err := svc.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "Second", snap.Items[0].Title)
	assert.Equal(t, "First", snap.Items[1].Title)
	assert.Equal(t, 3, snap.Count)

	// 500000 subtotal crosses the free shipping threshold.
	assert.Equal(t, int64(500000), snap.Quote.Subtotal)
	assert.Equal(t, int64(0), snap.Quote.ShippingFee)
	assert.Equal(t, int64(50000), snap.Quote.Tax)
	assert.Equal(t, int64(550000), snap.Quote.Total)
}

func TestPurgeStale(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	book := seedProduct(t, db, domain.Product{Title: "A", Price: 10000, Stock: 10, IsActive: true})

	repo := NewGormRepository(db)
	require.NoError(t, repo.Save(ctx, &domain.CartItem{UserID: "u1", ProductID: book.ID, Quantity: 1, AddedAt: time.Now().AddDate(0, 0, -120)}))
	require.NoError(t, repo.Save(ctx, &domain.CartItem{UserID: "u2", ProductID: book.ID, Quantity: 1, AddedAt: time.Now()}))

	removed, err := svc.PurgeStale(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var count int64
	db.Model(&domain.CartItem{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
