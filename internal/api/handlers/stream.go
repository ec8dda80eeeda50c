package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/smmpanel/internal/api/middleware"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/realtime"
)

// DefaultKeepAlive is how often an idle stream receives a comment line
const DefaultKeepAlive = 25 * time.Second

// errClientBehind is returned to the bus when a connection's buffer is full
var errClientBehind = errors.New("stream client is not keeping up")

// EventSubscriber is the subscription side of the realtime bus
type EventSubscriber interface {
	SubscribeOrders(subscriberID string, send realtime.SendFunc) (func(), error)
	SubscribeNotifications(subscriberID string, send realtime.SendFunc) (func(), error)
}

// StreamHandler serves realtime events as Server-Sent Events
type StreamHandler struct {
	bus       EventSubscriber
	logger    *logger.Logger
	keepAlive time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

func NewStreamHandler(bus EventSubscriber, log *logger.Logger) *StreamHandler {
	return &StreamHandler{bus: bus, logger: log, keepAlive: DefaultKeepAlive, done: make(chan struct{})}
}

// Close ends every open stream. http.Server.Shutdown waits for active
// handlers, so call it first.
func (h *StreamHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Orders streams order updates and sync progress. Admins see every order,
// users only their own.
// @Summary Order update stream
// @Tags Realtime
// @Produce text/event-stream
// @Security BearerAuth
// @Router /stream/orders [get]
func (h *StreamHandler) Orders(w http.ResponseWriter, r *http.Request) {
	subscriberID := realtime.AdminSubscriberID
	if !middleware.IsAdmin(r) {
		userID, _ := middleware.GetUserID(r)
		subscriberID = strconv.FormatInt(userID, 10)
	}
	h.serve(w, r, realtime.PoolOrders, subscriberID, h.bus.SubscribeOrders)
}

// Notifications streams notifications addressed to the caller
// @Summary Notification stream
// @Tags Realtime
// @Produce text/event-stream
// @Security BearerAuth
// @Router /stream/notifications [get]
func (h *StreamHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	h.serve(w, r, realtime.PoolNotifications, strconv.FormatInt(userID, 10), h.bus.SubscribeNotifications)
}

type subscribeFunc func(subscriberID string, send realtime.SendFunc) (func(), error)

func (h *StreamHandler) serve(w http.ResponseWriter, r *http.Request, pool realtime.Pool, subscriberID string, subscribe subscribeFunc) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := make(chan realtime.Event, 64)
	unsubscribe, err := subscribe(subscriberID, func(evt realtime.Event) error {
		select {
		case events <- evt:
			return nil
		default:
			return errClientBehind
		}
	})
	if err != nil {
		http.Error(w, "Realtime stream unavailable", http.StatusServiceUnavailable)
		return
	}
	defer unsubscribe()

	connID := uuid.NewString()
	log := h.logger.WithFields(map[string]interface{}{
		"pool":          pool,
		"subscriber_id": subscriberID,
		"conn_id":       connID,
	})
	log.Debug("Stream client connected")
	defer log.Debug("Stream client disconnected")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	hello, _ := json.Marshal(map[string]string{"connectionId": connID, "pool": string(pool)})
	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", hello)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case evt := <-events:
			data, err := json.Marshal(evt)
			if err != nil {
				log.WarnWithErr(err, "Failed to encode stream event")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		}
	}
}
