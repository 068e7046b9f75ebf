// Package notify turns order events into persisted notification rows.
// Writes run on a worker pool off the request path; a failed notification is
// logged and dropped, never surfaced to the customer flow that emitted it.
package notify

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/panjf2000/ants/v2"
	"github.com/vietbooks/bookstore/internal/domain"
	"github.com/vietbooks/bookstore/internal/events"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	KindOrderCreated   = "order_created"
	KindOrderCancelled = "order_cancelled"
)

type Service struct {
	db   *gorm.DB
	pool *ants.Pool
}

func NewService(db *gorm.DB, workers int) (*Service, error) {
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Service{db: db, pool: pool}, nil
}

// Register subscribes the service to the order lifecycle topics.
func (s *Service) Register(bus *events.Bus) error {
	if err := bus.SubscribeOrderCreated(s.onOrderCreated); err != nil {
		return err
	}
	return bus.SubscribeOrderCancelled(s.onOrderCancelled)
}

func (s *Service) onOrderCreated(evt events.OrderCreated) {
	s.submit(domain.Notification{
		UserID:    evt.UserID,
		Kind:      KindOrderCreated,
		Title:     fmt.Sprintf("Order %s placed", evt.OrderNumber),
		CreatedAt: time.Now(),
	}, evt)
}

func (s *Service) onOrderCancelled(evt events.OrderCancelled) {
	s.submit(domain.Notification{
		UserID:    evt.UserID,
		Kind:      KindOrderCancelled,
		Title:     fmt.Sprintf("Order %s cancelled", evt.OrderNumber),
		CreatedAt: time.Now(),
	}, evt)
}

func (s *Service) submit(n domain.Notification, payload interface{}) {
	if data, err := json.Marshal(payload); err == nil {
		n.Payload = string(data)
	}
	err := s.pool.Submit(func() {
		if err := s.db.Create(&n).Error; err != nil {
			zap.L().Warn("failed to persist notification",
				zap.String("kind", n.Kind),
				zap.String("user_id", n.UserID),
				zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Warn("notification pool rejected task", zap.Error(err))
	}
}

// Stop releases the worker pool.
func (s *Service) Stop() {
	s.pool.Release()
}
