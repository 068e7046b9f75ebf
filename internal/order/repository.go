package order

import (
	"context"
	"errors"

	"github.com/vietbooks/bookstore/internal/domain"
	"gorm.io/gorm"
)

// Repository handles order persistence reads used by the engine. All writes
// happen inside the engine's transactions against the tx handle directly.
type Repository interface {
	// GetByUser retrieves an order by id, ownership-checked.
	GetByUser(ctx context.Context, userID string, orderID int64) (*domain.Order, error)

	// GetByID retrieves an order by id without ownership scoping. Used by the
	// fulfillment-driven status mutator.
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)

	// GetItems returns the order's lines in insertion order.
	GetItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)

	// GetPayments returns the order's payment history ordered by payment date.
	GetPayments(ctx context.Context, orderID int64) ([]domain.Payment, error)
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetByUser(ctx context.Context, userID string, orderID int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepository) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepository) GetItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *GormRepository) GetPayments(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}
