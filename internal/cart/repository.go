package cart

import (
	"context"
	"errors"
	"time"

	"github.com/vietbooks/bookstore/internal/domain"
	"gorm.io/gorm"
)

// Repository handles cart line persistence. Every method is scoped by user id;
// there is never a cross-user query.
type Repository interface {
	// GetLine retrieves a cart line by id, ownership-checked.
	GetLine(ctx context.Context, userID string, lineID int64) (*domain.CartItem, error)

	// GetLineByProduct retrieves the user's line for a product, if any.
	GetLineByProduct(ctx context.Context, userID string, productID int64) (*domain.CartItem, error)

	// ListByUser returns the user's lines, most recently added first.
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)

	// Save inserts or updates a line.
	Save(ctx context.Context, line *domain.CartItem) error

	// Delete removes a line by id, ownership-checked. Returns the rows removed.
	Delete(ctx context.Context, userID string, lineID int64) (int64, error)

	// DeleteByUser removes all of the user's lines. Returns the rows removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// DeleteStale removes lines added before the cutoff, across all users.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetLine(ctx context.Context, userID string, lineID int64) (*domain.CartItem, error) {
	var line domain.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepository) GetLineByProduct(ctx context.Context, userID string, productID int64) (*domain.CartItem, error) {
	var line domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var lines []domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at DESC, id DESC").
		Find(&lines).Error
	return lines, err
}

func (r *GormRepository) Save(ctx context.Context, line *domain.CartItem) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *GormRepository) Delete(ctx context.Context, userID string, lineID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&domain.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("added_at < ?", cutoff).
		Delete(&domain.CartItem{})
	return res.RowsAffected, res.Error
}
