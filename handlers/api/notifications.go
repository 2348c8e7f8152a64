package api

import (
	"bufio"
	"contactdash/models"
	"contactdash/utils"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// EventType names a change to the message store
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event tells dashboards that the message set changed and should be re-fetched
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	MessageID string      `json:"messageId"`
	Flag      models.Flag `json:"flag,omitempty"`
	Value     bool        `json:"value"`
	Time      time.Time   `json:"time"`
}

// NotificationHandler fans store events out to SSE and WebSocket subscribers
type NotificationHandler struct {
	subscribers map[string]chan Event
	mu          sync.RWMutex
	keepAlive   time.Duration
	// dropWarn keeps a stuck subscriber from flooding the log
	dropWarn *rate.Sometimes
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{
		subscribers: make(map[string]chan Event),
		keepAlive:   30 * time.Second,
		dropWarn:    &rate.Sometimes{Interval: 10 * time.Second},
	}
}

func (h *NotificationHandler) subscribe() (string, <-chan Event) {
	id := uuid.New().String()
	ch := make(chan Event, 10)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	return id, ch
}

func (h *NotificationHandler) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

// Subscribers returns the number of connected subscribers
func (h *NotificationHandler) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HandleSSE streams events as Server-Sent Events
func (h *NotificationHandler) HandleSSE(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	id, events := h.subscribe()
	utils.Log.Info("SSE subscriber connected: %s", id)

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			h.unsubscribe(id)
			utils.Log.Info("SSE subscriber disconnected: %s", id)
		}()

		// flush headers now so clients know they are subscribed
		w.WriteString(": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case e, ok := <-events:
				if !ok {
					return
				}
				data, _ := json.Marshal(e)
				w.WriteString("event: " + string(e.Type) + "\n")
				w.WriteString("data: " + string(data) + "\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-ticker.C:
				w.WriteString(": keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-done:
				return
			}
		}
	}))

	return nil
}

// HandleWebSocket pushes events as JSON frames until the peer goes away
func (h *NotificationHandler) HandleWebSocket(c *websocket.Conn) {
	id, events := h.subscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.unsubscribe(id)
		c.Close()
		utils.Log.Info("WebSocket subscriber disconnected: %s", id)
	}()

	utils.Log.Info("WebSocket subscriber connected: %s", id)

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(e); err != nil {
				utils.Log.Error("Failed to send WebSocket event: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}

// UpgradeWebSocket rejects plain HTTP requests on the WebSocket route
func UpgradeWebSocket(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Created announces a new message
func (h *NotificationHandler) Created(id string) {
	h.Broadcast(Event{Type: EventCreated, MessageID: id})
}

// Updated announces a flag change
func (h *NotificationHandler) Updated(id string, flag models.Flag, value bool) {
	h.Broadcast(Event{Type: EventUpdated, MessageID: id, Flag: flag, Value: value})
}

// Deleted announces a permanent delete
func (h *NotificationHandler) Deleted(id string) {
	h.Broadcast(Event{Type: EventDeleted, MessageID: id})
}

// Broadcast sends an event to all subscribers, dropping it for slow ones
func (h *NotificationHandler) Broadcast(e Event) {
	e.ID = uuid.New().String()
	e.Time = time.Now()

	h.mu.RLock()
	defer h.mu.RUnlock()

	utils.Log.Debug("Broadcasting event: type=%s to %d subscribers", e.Type, len(h.subscribers))

	for subscriberID, ch := range h.subscribers {
		select {
		case ch <- e:
		default:
			h.dropWarn.Do(func() {
				utils.Log.Warn("Event channel full for subscriber %s, dropping events", subscriberID)
			})
		}
	}
}
