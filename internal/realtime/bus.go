package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/metrics"
)

// Pool separates subscribers by the kind of events they receive
type Pool string

const (
	// PoolOrders receives order updates and sync progress
	PoolOrders Pool = "orders"
	// PoolNotifications receives per-user notifications
	PoolNotifications Pool = "notifications"
)

// AdminSubscriberID receives every order update
const AdminSubscriberID = "admin"

// Event types
const (
	EventOrderUpdated = "order_updated"
	EventSyncProgress = "sync_progress"
	EventNotification = "notification"
)

// ErrBusClosed is returned when subscribing after Shutdown
var ErrBusClosed = errors.New("realtime bus is shut down")

// Event is what a subscriber receives
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// SendFunc delivers one event to a connection. Returning an error or panicking
// only affects that subscriber.
type SendFunc func(Event) error

// Notification is a user-facing message
type Notification struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	OrderID int64  `json:"orderId,string,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type orderUpdate struct {
	OrderID int64 `json:"orderId,string"`
	Order   any   `json:"order"`
}

type subscriber struct {
	key  uint64
	id   string
	send SendFunc
}

// Bus fans events out to live subscribers in two independent pools.
// It is process-local; subscribers are dropped on restart and must resubscribe.
type Bus struct {
	mu     sync.RWMutex
	pools  map[Pool]map[uint64]*subscriber
	next   uint64
	closed bool
	logger *logger.Logger
	now    func() time.Time
}

// NewBus creates a ready bus
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{
		pools: map[Pool]map[uint64]*subscriber{
			PoolOrders:        {},
			PoolNotifications: {},
		},
		logger: log.WithComponent("realtime"),
		now:    time.Now,
	}
}

// Subscribe registers send under subscriberID in pool. The returned func removes
// the registration and is safe to call more than once.
func (b *Bus) Subscribe(pool Pool, subscriberID string, send SendFunc) (func(), error) {
	if send == nil {
		return nil, errors.New("send func is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	subs, ok := b.pools[pool]
	if !ok {
		return nil, fmt.Errorf("unknown pool %q", pool)
	}

	b.next++
	sub := &subscriber{key: b.next, id: subscriberID, send: send}
	subs[sub.key] = sub
	metrics.SetRealtimeSubscribers(string(pool), len(subs))

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(pool, sub.key) })
	}, nil
}

// SubscribeOrders registers for order updates and sync progress
func (b *Bus) SubscribeOrders(subscriberID string, send SendFunc) (func(), error) {
	return b.Subscribe(PoolOrders, subscriberID, send)
}

// SubscribeNotifications registers for the subscriber's own notifications
func (b *Bus) SubscribeNotifications(subscriberID string, send SendFunc) (func(), error) {
	return b.Subscribe(PoolNotifications, subscriberID, send)
}

func (b *Bus) remove(pool Pool, key uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.pools[pool]
	if subs == nil {
		return
	}
	delete(subs, key)
	metrics.SetRealtimeSubscribers(string(pool), len(subs))
}

// SubscriberCount returns the number of live subscribers in pool
func (b *Bus) SubscriberCount(pool Pool) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pools[pool])
}

// PublishOrderUpdate delivers an order change to admins and to the owning user
func (b *Bus) PublishOrderUpdate(orderID, userID int64, data any) {
	owner := strconv.FormatInt(userID, 10)
	b.publish(PoolOrders, EventOrderUpdated, orderUpdate{OrderID: orderID, Order: normalizeIntegers(data)}, func(id string) bool {
		return id == AdminSubscriberID || id == owner
	})
}

// PublishSyncProgress delivers progress to every order subscriber
func (b *Bus) PublishSyncProgress(progress any) {
	b.publish(PoolOrders, EventSyncProgress, progress, nil)
}

// PublishNotification delivers n to the subscriber whose id is userID
func (b *Bus) PublishNotification(userID int64, n Notification) {
	target := strconv.FormatInt(userID, 10)
	n.Data = normalizeIntegers(n.Data)
	b.publish(PoolNotifications, EventNotification, n, func(id string) bool {
		return id == target
	})
}

// Shutdown drops every subscriber. Publishing afterwards is a no-op.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for pool := range b.pools {
		b.pools[pool] = map[uint64]*subscriber{}
		metrics.SetRealtimeSubscribers(string(pool), 0)
	}
	b.logger.Info("Realtime bus shut down")
}

func (b *Bus) publish(pool Pool, eventType string, payload any, match func(id string) bool) {
	targets := b.snapshot(pool, match)
	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(normalizeIntegers(payload))
	if err != nil {
		b.logger.WithFields(map[string]interface{}{
			"pool":  pool,
			"event": eventType,
		}).ErrorWithErr(err, "Failed to encode realtime event")
		return
	}

	evt := Event{Type: eventType, Data: data, Timestamp: b.now()}
	for _, sub := range targets {
		b.deliver(pool, sub, evt)
	}
}

func (b *Bus) snapshot(pool Pool, match func(id string) bool) []*subscriber {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}
	subs := b.pools[pool]
	out := make([]*subscriber, 0, len(subs))
	for _, sub := range subs {
		if match == nil || match(sub.id) {
			out = append(out, sub)
		}
	}
	return out
}

func (b *Bus) deliver(pool Pool, sub *subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordRealtimeDeliveryFailure(string(pool), evt.Type)
			b.logger.WithFields(map[string]interface{}{
				"pool":          pool,
				"subscriber_id": sub.id,
				"event":         evt.Type,
				"panic":         fmt.Sprint(r),
			}).Error("Realtime subscriber panicked")
		}
	}()

	if err := sub.send(evt); err != nil {
		metrics.RecordRealtimeDeliveryFailure(string(pool), evt.Type)
		b.logger.WithFields(map[string]interface{}{
			"pool":          pool,
			"subscriber_id": sub.id,
			"event":         evt.Type,
		}).WarnWithErr(err, "Realtime delivery failed")
	}
}

// normalizeIntegers rewrites int64 and uint64 values inside generic maps and
// slices as decimal strings. Typed structs control this with ",string" tags.
func normalizeIntegers(v any) any {
	switch t := v.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case *int64:
		if t == nil {
			return nil
		}
		return strconv.FormatInt(*t, 10)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeIntegers(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeIntegers(val)
		}
		return out
	case []int64:
		out := make([]string, len(t))
		for i, val := range t {
			out[i] = strconv.FormatInt(val, 10)
		}
		return out
	default:
		return v
	}
}
