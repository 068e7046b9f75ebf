package cart

import (
	"context"
	"errors"
	"time"

	"github.com/vietbooks/bookstore/internal/catalog"
	"github.com/vietbooks/bookstore/internal/domain"
	"github.com/vietbooks/bookstore/internal/pricing"
	"go.uber.org/zap"
)

// Totals is the cart badge data returned after every mutation: the total
// quantity across lines and the monetary subtotal.
type Totals struct {
	Count    int   `json:"count"`
	Subtotal int64 `json:"subtotal"`
}

// UpdateResult extends Totals with the recomputed subtotal of the updated line.
type UpdateResult struct {
	Totals
	LineSubtotal int64 `json:"line_subtotal"`
}

// LineView is one cart line joined with live product data for display.
type LineView struct {
	LineID    int64     `json:"line_id"`
	ProductID int64     `json:"product_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Subtotal  int64     `json:"subtotal"`
	Stock     int       `json:"stock"`
	ImageUrl  string    `json:"image_url"`
	AddedAt   time.Time `json:"added_at"`
}

// Snapshot is the full cart view: lines newest-first plus the price quote
// used by the cart page and checkout preview.
type Snapshot struct {
	Items []LineView    `json:"items"`
	Count int           `json:"count"`
	Quote pricing.Quote `json:"quote"`
}

// Service implements the cart store. Stock is read here for early validation
// but never written; the order engine owns stock at commit time, so a cart
// that validated at add time can still fail at checkout.
type Service struct {
	lines   Repository
	catalog catalog.Repository
}

func NewService(lines Repository, catalogRepo catalog.Repository) *Service {
	return &Service{lines: lines, catalog: catalogRepo}
}

// AddItem creates the user's line for the product or increments an existing
// one. The requested quantity and the combined line quantity are both bounded;
// the combined quantity must not exceed current stock.
func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*Totals, error) {
	if quantity < domain.CartQuantityMin || quantity > domain.CartQuantityMax {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.catalog.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	line, err := s.lines.GetLineByProduct(ctx, userID, productID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		line = &domain.CartItem{
			UserID:    userID,
			ProductID: productID,
			AddedAt:   time.Now(),
		}
	case err != nil:
		return nil, err
	}

	newQuantity := line.Quantity + quantity
	if newQuantity > domain.CartQuantityMax {
		return nil, domain.ErrInvalidQuantity
	}
	if newQuantity > product.Stock {
		return nil, &domain.InsufficientStockError{
			ProductID: product.ID,
			Title:     product.Title,
			Requested: newQuantity,
			Available: product.Stock,
		}
	}

	line.Quantity = newQuantity
	if err := s.lines.Save(ctx, line); err != nil {
		return nil, err
	}

	zap.L().Debug("cart line saved",
		zap.String("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", newQuantity))

	return s.Totals(ctx, userID)
}

// UpdateQuantity sets an existing line to an absolute quantity.
func (s *Service) UpdateQuantity(ctx context.Context, userID string, lineID int64, quantity int) (*UpdateResult, error) {
	if quantity < domain.CartQuantityMin || quantity > domain.CartQuantityMax {
		return nil, domain.ErrInvalidQuantity
	}

	line, err := s.lines.GetLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, &domain.InsufficientStockError{
			ProductID: product.ID,
			Title:     product.Title,
			Requested: quantity,
			Available: product.Stock,
		}
	}

	line.Quantity = quantity
	if err := s.lines.Save(ctx, line); err != nil {
		return nil, err
	}

	totals, err := s.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{
		Totals:       *totals,
		LineSubtotal: product.Price * int64(quantity),
	}, nil
}

// RemoveItem deletes one line. Removing an absent or foreign line reports
// ErrNotFound.
func (s *Service) RemoveItem(ctx context.Context, userID string, lineID int64) (*Totals, error) {
	removed, err := s.lines.Delete(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, domain.ErrNotFound
	}
	return s.Totals(ctx, userID)
}

// Clear deletes all of the user's lines and returns how many were removed.
func (s *Service) Clear(ctx context.Context, userID string) (int64, error) {
	return s.lines.DeleteByUser(ctx, userID)
}

// Totals computes the navigation badge numbers for the user's cart.
func (s *Service) Totals(ctx context.Context, userID string) (*Totals, error) {
	lines, err := s.lines.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	t := &Totals{}
	for _, line := range lines {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		t.Count += line.Quantity
		t.Subtotal += product.Price * int64(line.Quantity)
	}
	return t, nil
}

// Snapshot returns all lines joined with current product data, newest-first,
// plus the price quote for the whole cart.
func (s *Service) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	lines, err := s.lines.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Items: make([]LineView, 0, len(lines))}
	priceLines := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		snap.Items = append(snap.Items, LineView{
			LineID:    line.ID,
			ProductID: product.ID,
			Title:     product.Title,
			Author:    product.Author,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			Subtotal:  product.Price * int64(line.Quantity),
			Stock:     product.Stock,
			ImageUrl:  product.ImageUrl,
			AddedAt:   line.AddedAt,
		})
		snap.Count += line.Quantity
		priceLines = append(priceLines, pricing.Line{UnitPrice: product.Price, Quantity: line.Quantity})
	}
	snap.Quote = pricing.QuoteLines(priceLines)
	return snap, nil
}

// PurgeStale removes cart lines untouched for more than maxAgeDays. Run by
// the daily maintenance job.
func (s *Service) PurgeStale(ctx context.Context, maxAgeDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	removed, err := s.lines.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		zap.L().Info("purged stale cart lines",
			zap.Int64("removed", removed),
			zap.Int("max_age_days", maxAgeDays))
	}
	return removed, nil
}
