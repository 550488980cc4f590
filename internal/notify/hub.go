package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

const (
	eventBuffer      = 256
	subscriberBuffer = 16
)

// Subscriber receives the JSON-encoded status events of one order. Its
// channel is closed once the order reaches a terminal status or the hub stops.
type Subscriber struct {
	orderID uint
	send    chan []byte
}

func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}

// Hub fans committed order status changes out to websocket subscribers. All
// subscriber bookkeeping happens on the Run goroutine.
type Hub struct {
	subscribers map[uint]map[*Subscriber]struct{}
	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcast   chan domain.OrderEvent
	resync      chan resync
	done        chan struct{}
}

type resync struct {
	sub   *Subscriber
	event domain.OrderEvent
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uint]map[*Subscriber]struct{}),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan domain.OrderEvent, eventBuffer),
		resync:      make(chan resync),
		done:        make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for orderID := range h.subscribers {
			h.closeOrder(orderID)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-h.register:
			subs, ok := h.subscribers[sub.orderID]
			if !ok {
				subs = make(map[*Subscriber]struct{})
				h.subscribers[sub.orderID] = subs
			}
			subs[sub] = struct{}{}
		case sub := <-h.unregister:
			if subs, ok := h.subscribers[sub.orderID]; ok {
				if _, ok := subs[sub]; ok {
					delete(subs, sub)
					close(sub.send)
				}
				if len(subs) == 0 {
					delete(h.subscribers, sub.orderID)
				}
			}
		case event := <-h.broadcast:
			h.deliver(event)
		case r := <-h.resync:
			h.deliverTo(r.sub, r.event)
		}
	}
}

func (h *Hub) deliver(event domain.OrderEvent) {
	subs, ok := h.subscribers[event.OrderID]
	if !ok {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("notify: marshal order event", zap.Uint("orderID", event.OrderID), zap.Error(err))
		return
	}

	for sub := range subs {
		select {
		case sub.send <- message:
		default:
			// Slow reader; drop it rather than stall the hub.
			delete(subs, sub)
			close(sub.send)
		}
	}

	if event.Status.IsTerminal() {
		h.closeOrder(event.OrderID)
	}
}

// deliverTo sends event to one subscriber that is still registered, closing it
// when the event settles the order.
func (h *Hub) deliverTo(sub *Subscriber, event domain.OrderEvent) {
	subs := h.subscribers[sub.orderID]
	if _, ok := subs[sub]; !ok {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("notify: marshal order event", zap.Uint("orderID", event.OrderID), zap.Error(err))
		return
	}

	select {
	case sub.send <- message:
	default:
		delete(subs, sub)
		close(sub.send)
		return
	}

	if event.Status.IsTerminal() {
		delete(subs, sub)
		close(sub.send)
	}
	if len(subs) == 0 {
		delete(h.subscribers, sub.orderID)
	}
}

func (h *Hub) closeOrder(orderID uint) {
	for sub := range h.subscribers[orderID] {
		close(sub.send)
	}
	delete(h.subscribers, orderID)
}

// Publish never blocks the caller. Events are dropped when the hub is not
// keeping up.
func (h *Hub) Publish(event domain.OrderEvent) {
	select {
	case h.broadcast <- event:
	default:
		zap.L().Warn("notify: event dropped", zap.Uint("orderID", event.OrderID), zap.String("status", string(event.Status)))
	}
}

// Subscribe registers for the events of orderID. initial, when not nil, is
// queued ahead of any published event.
func (h *Hub) Subscribe(orderID uint, initial []byte) *Subscriber {
	sub := &Subscriber{orderID: orderID, send: make(chan []byte, subscriberBuffer)}
	if initial != nil {
		sub.send <- initial
	}

	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.send)
	}

	return sub
}

// Resync hands sub a status read after it subscribed. Changes committed before
// the subscription reach it this way instead of through Publish.
func (h *Hub) Resync(sub *Subscriber, event domain.OrderEvent) {
	select {
	case h.resync <- resync{sub: sub, event: event}:
	case <-h.done:
	}
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}
