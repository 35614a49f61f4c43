package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/pkg/metrics"
)

// Event types pushed to websocket clients.
const (
	// EventStateUpdated carries a shared state document key and its new value.
	EventStateUpdated = "state_updated"
	// EventStoreChanged names an app state collection that changed.
	EventStoreChanged = "store_changed"
	// EventRemoteStatus carries the mirror connection state.
	EventRemoteStatus = "remote_status"
)

const eventsChannel = "booking:events"

// Event is the message written to every connected client.
type Event struct {
	Type string          `json:"type"`
	Key  string          `json:"key,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type envelope struct {
	Event            Event  `json:"event"`
	SenderInstanceID string `json:"sender_instance_id"`
}

// Client is one websocket connection.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans events out to local clients and, through Redis, to the clients
// of every other instance.
type Hub struct {
	clients map[*Client]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
}

// NewHub creates a hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client) *Hub {
	return NewHubWithInstanceID(redisClient, uuid.NewString())
}

// NewHubWithInstanceID creates a hub with an explicit instance identifier.
func NewHubWithInstanceID(redisClient *redis.Client, instanceID string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[*Client]bool),
		redis:      redisClient,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		instanceID: instanceID,
	}
	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, eventsChannel)
	}
	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.SetWSClients(n)
			log.Debug().Str("client_id", c.ID).Msg("Client connected to WebSocket")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.SetWSClients(n)
			log.Debug().Str("client_id", c.ID).Msg("Client disconnected from WebSocket")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.SenderInstanceID == h.instanceID {
				continue
			}
			data, err := json.Marshal(env.Event)
			if err != nil {
				continue
			}
			h.broadcastLocal(data)
		}
	}
}

// Register adds a connection
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.ctx.Done():
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// Broadcast sends ev to every client on every instance.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal WebSocket event")
		return
	}
	h.broadcastLocal(data)

	if h.redis == nil {
		return
	}
	payload, err := json.Marshal(envelope{Event: ev, SenderInstanceID: h.instanceID})
	if err != nil {
		return
	}
	if err := h.redis.Publish(h.ctx, eventsChannel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", eventsChannel).Msg("Redis publish failed")
	}
}

// BroadcastJSON marshals v as the event data.
func (h *Hub) BroadcastJSON(eventType, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal WebSocket payload")
		return
	}
	h.Broadcast(Event{Type: eventType, Key: key, Data: data})
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Send <- data:
		default:
			metrics.IncWSDropped()
			log.Warn().Str("client_id", c.ID).Msg("WebSocket send buffer full")
		}
	}
}

// ClientCount returns number of local connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}

// StateUpdated pushes a shared state document write to every client.
func (h *Hub) StateUpdated(key string, data json.RawMessage) {
	h.Broadcast(Event{Type: EventStateUpdated, Key: key, Data: data})
}
