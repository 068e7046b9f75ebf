package catalog

import (
	"context"
	"errors"

	"github.com/vietbooks/bookstore/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the read side of the catalog plus the single stock-mutation
// primitive. Nothing else in the core writes catalog rows.
type Repository interface {
	// GetProduct retrieves a product by id regardless of active flag.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// GetActiveProduct retrieves a product that is currently for sale.
	GetActiveProduct(ctx context.Context, id int64) (*domain.Product, error)

	// LockProducts loads the given products, taking row locks where the
	// dialect supports them. Must be called inside a transaction.
	LockProducts(ctx context.Context, tx *gorm.DB, ids []int64) ([]domain.Product, error)

	// AdjustStock applies a stock delta with a non-negative guard. It returns
	// false when the guard rejected the change (a concurrent writer got there
	// first). Must be called inside the order engine's transaction.
	AdjustStock(ctx context.Context, tx *gorm.DB, id int64, delta int) (bool, error)
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) GetActiveProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) LockProducts(ctx context.Context, tx *gorm.DB, ids []int64) ([]domain.Product, error) {
	q := tx.WithContext(ctx)
	// SQLite has no row locks; its single-writer transactions give the same
	// isolation for this workload.
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var products []domain.Product
	if err := q.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepository) AdjustStock(ctx context.Context, tx *gorm.DB, id int64, delta int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
