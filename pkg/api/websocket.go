package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/r3d91ll/heddle/pkg/interact"
)

// -----------------------------------------------------------------------------
// WebSocket Constants
// -----------------------------------------------------------------------------

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// Size of client send buffer.
	sendBufferSize = 256
)

// Message types for WebSocket messages
const (
	MessageTypeEvent  = "event"  // client: one interaction
	MessageTypePing   = "ping"   // client: keepalive
	MessageTypePong   = "pong"   // server: keepalive reply
	MessageTypeOps    = "ops"    // server: op batch after an event
	MessageTypeClosed = "closed" // server: instance torn down
	MessageTypeError  = "error"  // server: rejected message
)

// -----------------------------------------------------------------------------
// WebSocket Message Types
// -----------------------------------------------------------------------------

// WSMessage is the standard WebSocket message envelope.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Event     *interact.Event `json:"event,omitempty"`
	Data      interface{}     `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// -----------------------------------------------------------------------------
// WebSocket Upgrader
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SetUpgraderCheckOrigin allows customizing the origin check function.
func SetUpgraderCheckOrigin(fn func(*http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// DispatchFunc applies an event received over a socket to the instance
// mounted as id.
type DispatchFunc func(id string, ev interact.Event)

// Client represents a single WebSocket connection attached to one
// visualization.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	id       string
	dispatch DispatchFunc
}

// NewClient creates a new WebSocket client for the instance mounted as id.
func NewClient(hub *Hub, conn *websocket.Conn, id string, dispatch DispatchFunc) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		id:       id,
		dispatch: dispatch,
	}
}

// ID returns the container id the client follows.
func (c *Client) ID() string { return c.id }

// readPump pumps messages from the WebSocket connection to the dispatcher.
// The application runs readPump in a per-connection goroutine.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] %s: read error: %v", c.id, err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// handleMessage processes an incoming message from the client.
func (c *Client) handleMessage(message []byte) {
	var msg WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError("invalid_json", "Failed to parse message")
		return
	}

	switch msg.Type {
	case MessageTypeEvent:
		if msg.Event == nil {
			c.sendError("invalid_event", "No event specified")
			return
		}
		if c.dispatch != nil {
			c.dispatch(c.id, *msg.Event)
		}
	case MessageTypePing:
		c.queue(&WSMessage{Type: MessageTypePong, ID: c.id, Timestamp: timestamp()})
	default:
		log.Printf("[ws] %s: unknown message type: %s", c.id, msg.Type)
		c.sendError("unknown_type", "Unknown message type "+msg.Type)
	}
}

// sendError sends an error message to the client.
func (c *Client) sendError(code, message string) {
	c.queue(&WSMessage{
		Type: MessageTypeError,
		ID:   c.id,
		Data: &APIError{
			Code:    code,
			Message: message,
		},
		Timestamp: timestamp(),
	})
}

// queue marshals msg onto the send buffer, dropping it when the buffer is
// full.
func (c *Client) queue(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
// A goroutine running writePump is started for each connection. Every
// message is sent as its own frame so each op batch stays a JSON document.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Hub
// -----------------------------------------------------------------------------

// Hub maintains the set of active clients and fans op batches out to the
// clients following each visualization.
type Hub struct {
	// clients is the set of registered clients
	clients map[*Client]bool

	// register is the channel for new clients
	register chan *Client

	// unregister is the channel for disconnecting clients
	unregister chan *Client

	// mu protects the clients map
	mu sync.RWMutex

	// done signals the hub to stop
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[ws] %s: client connected (total: %d)", client.id, h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("[ws] %s: client disconnected (total: %d)", client.id, h.ClientCount())
		}
	}
}

// attach registers c. It returns false once the hub has stopped.
func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Stop gracefully stops the hub. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends msg to every client following the visualization id. Slow
// clients whose buffer is full miss the message.
func (h *Hub) Publish(id string, msg *WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.id != id {
			continue
		}
		select {
		case client.send <- data:
		default:
			log.Printf("[ws] %s: client buffer full, dropping %s", id, msg.Type)
		}
	}
	return nil
}

// PublishOps sends the result of one event to the clients following id.
func (h *Hub) PublishOps(id string, resp *EventResponse) error {
	return h.Publish(id, &WSMessage{
		Type:      MessageTypeOps,
		ID:        id,
		Data:      resp,
		Timestamp: timestamp(),
	})
}

// PublishClosed tells the clients following id that the instance is gone.
func (h *Hub) PublishClosed(id string) error {
	return h.Publish(id, &WSMessage{Type: MessageTypeClosed, ID: id, Timestamp: timestamp()})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
