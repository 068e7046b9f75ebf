// Package events carries order lifecycle notifications over an in-process
// bus. Publishing is fire-and-forget: subscribers must never influence the
// outcome of the operation that emitted the event.
package events

import (
	"time"

	"github.com/asaskevich/EventBus"
)

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCancelled = "order.cancelled"
)

// OrderCreated fires after a successful atomic order commit.
type OrderCreated struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Total       int64     `json:"total"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderCancelled fires after a cancellation commits, stock restitution
// included.
type OrderCancelled struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// Bus wraps the process-wide event bus with typed publish/subscribe helpers.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) PublishOrderCreated(evt OrderCreated) {
	b.bus.Publish(TopicOrderCreated, evt)
}

func (b *Bus) PublishOrderCancelled(evt OrderCancelled) {
	b.bus.Publish(TopicOrderCancelled, evt)
}

func (b *Bus) SubscribeOrderCreated(fn func(OrderCreated)) error {
	return b.bus.Subscribe(TopicOrderCreated, fn)
}

func (b *Bus) SubscribeOrderCancelled(fn func(OrderCancelled)) error {
	return b.bus.Subscribe(TopicOrderCancelled, fn)
}
