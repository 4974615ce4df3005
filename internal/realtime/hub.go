// Package realtime streams conversation events to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max concurrent streams one user may hold on a conversation.
	maxConnsPerUser = 4
	// Max total connections
	maxTotalConns = 10000

	EventMessageCreated = "message.created"
)

var (
	ErrUserLimit   = errors.New("user connection limit reached")
	ErrServerLimit = errors.New("server connection limit reached")
)

// Event is the JSON frame written to subscribers.
type Event struct {
	Type           string          `json:"type"`
	ConversationID uint            `json:"conversation_id"`
	Message        *models.Message `json:"message,omitempty"`
}

// Hub tracks websocket clients per conversation. While Run holds a live
// Redis subscription, events go through Redis so every API instance
// delivers them; otherwise they are delivered in-process.
type Hub struct {
	mu         sync.RWMutex
	convs      map[uint]map[*Client]struct{}
	totalConns int

	fanout     *Fanout
	subscribed atomic.Bool
	log        *observability.WSLogger
}

// NewHub creates a new Hub. fanout may be nil.
func NewHub(fanout *Fanout) *Hub {
	return &Hub{
		convs:  make(map[uint]map[*Client]struct{}),
		fanout: fanout,
		log:    observability.NewWSLogger("conversations"),
	}
}

// Register subscribes conn to conversationID on behalf of userID.
func (h *Hub) Register(conversationID, userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, ErrServerLimit
	}
	set, ok := h.convs[conversationID]
	if !ok {
		set = make(map[*Client]struct{})
		h.convs[conversationID] = set
	}
	perUser := 0
	for c := range set {
		if c.UserID == userID {
			perUser++
		}
	}
	if perUser >= maxConnsPerUser {
		return nil, ErrUserLimit
	}

	client := newClient(h, conn, conversationID, userID)
	set[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	h.log.LogConnect(context.Background(), userID, conversationID)
	return client, nil
}

// Unregister removes the client and closes its Send channel. Safe to call
// more than once.
func (h *Hub) Unregister(c *Client, reason string) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	h.mu.Unlock()

	if removed {
		h.log.LogDisconnect(context.Background(), c.UserID, c.ConversationID, reason)
	}
}

func (h *Hub) removeLocked(c *Client) bool {
	set, ok := h.convs[c.ConversationID]
	if !ok {
		return false
	}
	if _, exists := set[c]; !exists {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.convs, c.ConversationID)
	}
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()
	close(c.Send)
	return true
}

// Subscribers returns how many clients follow conversationID.
func (h *Hub) Subscribers(conversationID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.convs[conversationID])
}

// PublishMessage announces a newly stored message to the conversation.
func (h *Hub) PublishMessage(ctx context.Context, msg *models.Message) {
	event := Event{Type: EventMessageCreated, ConversationID: msg.ConversationID, Message: msg}
	payload, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "marshal realtime event", slog.String("error", err.Error()))
		return
	}

	if h.FanoutActive() {
		if err := h.fanout.Publish(ctx, msg.ConversationID, payload); err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "redis fanout failed, delivering locally",
			slog.Uint64("conversation_id", uint64(msg.ConversationID)))
	} else if h.fanout.Enabled() {
		middleware.Logger.WarnContext(ctx, "redis fanout not subscribed, delivering locally",
			slog.Uint64("conversation_id", uint64(msg.ConversationID)))
	}
	h.Deliver(msg.ConversationID, payload)
}

// FanoutActive reports whether Run currently holds the Redis subscription.
func (h *Hub) FanoutActive() bool {
	return h.fanout.Enabled() && h.subscribed.Load()
}

// Deliver writes payload to every local subscriber of conversationID.
// Clients whose buffer is full are dropped.
func (h *Hub) Deliver(conversationID uint, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for c := range h.convs[conversationID] {
		if !c.trySend(payload) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		if h.removeLocked(c) {
			h.log.LogDisconnect(context.Background(), c.UserID, c.ConversationID, "buffer full")
		}
	}
}

// Run consumes the Redis fanout until ctx is done. It returns immediately
// when no fanout is attached.
func (h *Hub) Run(ctx context.Context) error {
	if !h.fanout.Enabled() {
		return nil
	}
	defer h.subscribed.Store(false)
	return h.fanout.Subscribe(ctx, func() { h.subscribed.Store(true) }, h.Deliver)
}

// Shutdown unregisters every client. Each WritePump then sends a going-away
// close frame and closes its connection.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.convs {
		for c := range set {
			c.closeCode = websocket.CloseGoingAway
			c.closeText = "Server shutting down"
			if h.removeLocked(c) {
				h.log.LogDisconnect(context.Background(), c.UserID, c.ConversationID, "shutdown")
			}
		}
	}
	return nil
}
