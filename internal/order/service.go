package order

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/vietbooks/bookstore/internal/cart"
	"github.com/vietbooks/bookstore/internal/catalog"
	"github.com/vietbooks/bookstore/internal/domain"
	"github.com/vietbooks/bookstore/internal/events"
	"github.com/vietbooks/bookstore/internal/pricing"
	"github.com/vietbooks/bookstore/pkg/common"
	"github.com/vietbooks/bookstore/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShippingInfo are the delivery fields captured at checkout.
type ShippingInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// PlaceOrderInput is the full checkout request.
type PlaceOrderInput struct {
	Shipping      ShippingInfo `json:"shipping"`
	PaymentMethod string       `json:"payment_method"`
	Notes         string       `json:"notes"`
}

// PlaceOrderResult identifies the committed order.
type PlaceOrderResult struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// ReorderResult reports a best-effort reorder: how many items made it back
// into the cart and one message per item that did not.
type ReorderResult struct {
	AddedCount int      `json:"added_count"`
	Failures   []string `json:"failures"`
}

// Service is the order engine. It owns the atomic commit that turns a cart
// into an order, the cancellation path with stock restitution, and the order
// status state machine.
type Service struct {
	db      *gorm.DB
	orders  Repository
	carts   cart.Repository
	cartSvc *cart.Service
	catalog catalog.Repository
	bus     *events.Bus
}

func NewService(
	db *gorm.DB,
	orders Repository,
	carts cart.Repository,
	cartSvc *cart.Service,
	catalogRepo catalog.Repository,
	bus *events.Bus,
) *Service {
	return &Service{
		db:      db,
		orders:  orders,
		carts:   carts,
		cartSvc: cartSvc,
		catalog: catalogRepo,
		bus:     bus,
	}
}

func validatePlaceOrder(in PlaceOrderInput) error {
	var violations []domain.FieldViolation
	add := func(field, message string) {
		violations = append(violations, domain.FieldViolation{Field: field, Message: message})
	}

	name := strings.TrimSpace(in.Shipping.Name)
	if name == "" {
		add("shipping_name", "recipient name is required")
	} else if len(name) > 100 {
		add("shipping_name", "recipient name must not exceed 100 characters")
	}

	phone := strings.TrimSpace(in.Shipping.Phone)
	if phone == "" {
		add("shipping_phone", "phone number is required")
	} else if len(phone) > 20 {
		add("shipping_phone", "phone number must not exceed 20 characters")
	}

	email := strings.TrimSpace(in.Shipping.Email)
	switch {
	case email == "":
		add("shipping_email", "email is required")
	case len(email) > 256:
		add("shipping_email", "email must not exceed 256 characters")
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			add("shipping_email", "email is not a valid address")
		}
	}

	address := strings.TrimSpace(in.Shipping.Address)
	if address == "" {
		add("shipping_address", "shipping address is required")
	} else if len(address) > 500 {
		add("shipping_address", "shipping address must not exceed 500 characters")
	}

	if len(in.Notes) > 1000 {
		add("notes", "notes must not exceed 1000 characters")
	}

	switch in.PaymentMethod {
	case domain.PaymentMethodCOD, domain.PaymentMethodStripe, domain.PaymentMethodBankTransfer:
	default:
		add("payment_method", "payment method must be one of COD, Stripe, BankTransfer")
	}

	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

func initialPaymentStatus(method string) string {
	if method == domain.PaymentMethodCOD {
		return domain.PaymentStatusCOD
	}
	return domain.PaymentStatusPending
}

// lockingFor adds a row lock where the dialect supports one. SQLite's
// single-writer transactions give equivalent isolation for this workload.
func lockingFor(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// PlaceOrder converts the user's cart into an order as one atomic unit:
// stock re-check, stock decrement, order + item insertion, and cart clearing
// either all commit or none do. Two orders racing for the last unit of a
// product cannot both succeed; the loser gets InsufficientStockError.
func (s *Service) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*PlaceOrderResult, error) {
	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, &domain.TransientError{Op: "order.place", Err: err}
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	if err := validatePlaceOrder(in); err != nil {
		return nil, err
	}

	var result PlaceOrderResult
	var created events.OrderCreated

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		// Reload the cart inside the transaction; another session may have
		// mutated it since the pre-check.
		var txLines []domain.CartItem
		if err := tx.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("added_at DESC, id DESC").
			Find(&txLines).Error; err != nil {
			return err
		}
		if len(txLines) == 0 {
			return domain.ErrEmptyCart
		}

		ids := make([]int64, 0, len(txLines))
		for _, line := range txLines {
			ids = append(ids, line.ProductID)
		}
		products, err := s.catalog.LockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		// Re-check every line against locked stock before touching anything.
		for _, line := range txLines {
			p, ok := byID[line.ProductID]
			if !ok {
				return &domain.InsufficientStockError{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: 0,
				}
			}
			if line.Quantity > p.Stock {
				return &domain.InsufficientStockError{
					ProductID: p.ID,
					Title:     p.Title,
					Requested: line.Quantity,
					Available: p.Stock,
				}
			}
		}

		// Decrement stock. The guarded update catches any interleaving the
		// lock did not cover.
		for _, line := range txLines {
			p := byID[line.ProductID]
			ok, err := s.catalog.AdjustStock(ctx, tx, line.ProductID, -line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.InsufficientStockError{
					ProductID: p.ID,
					Title:     p.Title,
					Requested: line.Quantity,
					Available: p.Stock,
				}
			}
		}

		priceLines := make([]pricing.Line, 0, len(txLines))
		for _, line := range txLines {
			priceLines = append(priceLines, pricing.Line{
				UnitPrice: byID[line.ProductID].Price,
				Quantity:  line.Quantity,
			})
		}
		quote := pricing.QuoteLines(priceLines)

		now := time.Now()
		o := domain.Order{
			OrderNumber:     common.GenerateOrderNumber(),
			UserID:          userID,
			Status:          domain.OrderStatusPending,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   initialPaymentStatus(in.PaymentMethod),
			ShippingName:    strings.TrimSpace(in.Shipping.Name),
			ShippingPhone:   strings.TrimSpace(in.Shipping.Phone),
			ShippingEmail:   strings.TrimSpace(in.Shipping.Email),
			ShippingAddress: strings.TrimSpace(in.Shipping.Address),
			Notes:           in.Notes,
			Total:           quote.Total,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Create(&o).Error; err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(txLines))
		for _, line := range txLines {
			p := byID[line.ProductID]
			items = append(items, domain.OrderItem{
				OrderID:   o.ID,
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
				Subtotal:  p.Price * int64(line.Quantity),
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}

		result = PlaceOrderResult{OrderID: o.ID, OrderNumber: o.OrderNumber}
		created = events.OrderCreated{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      userID,
			Total:       o.Total,
			ItemCount:   len(items),
			CreatedAt:   now,
		}
		return nil
	})

	if txErr != nil {
		if isBusinessError(txErr) {
			return nil, txErr
		}
		zap.L().Error("order commit failed",
			zap.String("user_id", userID),
			zap.Error(txErr))
		return nil, &domain.TransientError{Op: "order.place", Err: txErr}
	}

	metrics.IncrCounter("bookstore_orders_created", 1)
	zap.L().Info("order placed",
		zap.Int64("order_id", result.OrderID),
		zap.String("order_number", result.OrderNumber),
		zap.String("user_id", userID),
		zap.Int64("total", created.Total))

	if s.bus != nil {
		s.bus.PublishOrderCreated(created)
	}
	return &result, nil
}

// Cancel cancels a Pending order owned by the caller. The status change and
// the per-item stock restitution commit as one unit; a partially cancelled
// order can never be observed.
func (s *Service) Cancel(ctx context.Context, userID string, orderID int64) error {
	var cancelled events.OrderCancelled

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		err := lockingFor(tx).WithContext(ctx).
			Where("id = ? AND user_id = ?", orderID, userID).
			First(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		if o.Status != domain.OrderStatusPending {
			return &domain.InvalidTransitionError{From: o.Status, To: domain.OrderStatusCancelled}
		}

		if err := tx.Model(&domain.Order{}).
			Where("id = ?", o.ID).
			Updates(map[string]interface{}{
				"status":     domain.OrderStatusCancelled,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		var items []domain.OrderItem
		if err := tx.Where("order_id = ?", o.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			ok, err := s.catalog.AdjustStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("stock restitution rejected for product %d", item.ProductID)
			}
		}

		cancelled = events.OrderCancelled{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      userID,
			CancelledAt: time.Now(),
		}
		return nil
	})

	if txErr != nil {
		if isBusinessError(txErr) {
			return txErr
		}
		zap.L().Error("order cancellation failed",
			zap.Int64("order_id", orderID),
			zap.Error(txErr))
		return &domain.TransientError{Op: "order.cancel", Err: txErr}
	}

	metrics.IncrCounter("bookstore_orders_cancelled", 1)
	zap.L().Info("order cancelled",
		zap.Int64("order_id", cancelled.OrderID),
		zap.String("order_number", cancelled.OrderNumber))

	if s.bus != nil {
		s.bus.PublishOrderCancelled(cancelled)
	}
	return nil
}

// Reorder puts the items of a previous order back into the cart, best-effort
// per item: one unavailable product never blocks the rest. It fails outright
// only when no item could be added.
func (s *Service) Reorder(ctx context.Context, userID string, orderID int64) (*ReorderResult, error) {
	o, err := s.orders.GetByUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.GetItems(ctx, o.ID)
	if err != nil {
		return nil, &domain.TransientError{Op: "order.reorder", Err: err}
	}

	result := &ReorderResult{}
	for _, item := range items {
		if _, err := s.cartSvc.AddItem(ctx, userID, item.ProductID, item.Quantity); err != nil {
			// The original flow folds "product gone", "inactive" and "not
			// enough stock" into one customer-facing message.
			result.Failures = append(result.Failures, reorderFailureMessage(ctx, s.catalog, item.ProductID))
			continue
		}
		result.AddedCount++
	}

	if result.AddedCount == 0 {
		return result, domain.ErrReorderFailed
	}
	return result, nil
}

func reorderFailureMessage(ctx context.Context, catalogRepo catalog.Repository, productID int64) string {
	title := fmt.Sprintf("product %d", productID)
	if p, err := catalogRepo.GetProduct(ctx, productID); err == nil {
		title = p.Title
	}
	return fmt.Sprintf("%q is out of stock or no longer available", title)
}

// UpdateStatus applies a fulfillment-driven forward transition. Cancellation
// is not reachable from here; only Cancel drives Pending -> Cancelled.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, next domain.OrderStatus) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if next == domain.OrderStatusCancelled || !domain.CanTransition(o.Status, next) {
		return &domain.InvalidTransitionError{From: o.Status, To: next}
	}

	res := s.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", o.ID, o.Status).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return &domain.TransientError{Op: "order.update_status", Err: res.Error}
	}
	// Zero rows means the status moved underneath us; re-read would show the
	// conflicting state, so report the transition as invalid.
	if res.RowsAffected == 0 {
		return &domain.InvalidTransitionError{From: o.Status, To: next}
	}

	zap.L().Info("order status updated",
		zap.Int64("order_id", o.ID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)))
	return nil
}

func isBusinessError(err error) bool {
	var stockErr *domain.InsufficientStockError
	var transitionErr *domain.InvalidTransitionError
	var validationErr *domain.ValidationError
	return errors.As(err, &stockErr) ||
		errors.As(err, &transitionErr) ||
		errors.As(err, &validationErr) ||
		errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrForbidden)
}
