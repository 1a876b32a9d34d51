package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Buffered messages per client before it is dropped as too slow.
	sendBuffer = 64
)

// Client is one websocket connection watching a session.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string

	// OnPong, if set, runs each time the peer answers a ping.
	OnPong func()
}

// NewClient creates a client for a session.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		SessionID: sessionID,
	}
}

// Hub fans session messages out to the clients watching each session. A
// session may be watched from several tabs at once.
type Hub struct {
	Rooms      map[string]map[*Client]bool // session ID -> set of clients
	Unregister chan *Client
	Broadcast  chan *RoomMessage
	CloseRoom  chan string
	mu         sync.RWMutex
}

// RoomMessage carries a message destined for every client of a session.
type RoomMessage struct {
	SessionID string
	Message   []byte
}

// NewHub creates and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *RoomMessage, 256),
		CloseRoom:  make(chan string, 16),
	}
}

// Join adds a client to its session's room. The client is a member when
// Join returns, so SendTo reaches it right away.
func (h *Hub) Join(client *Client) {
	h.mu.Lock()
	if h.Rooms[client.SessionID] == nil {
		h.Rooms[client.SessionID] = make(map[*Client]bool)
	}
	h.Rooms[client.SessionID][client] = true
	h.mu.Unlock()

	logger.Get().Info("client registered", zap.String("session_id", client.SessionID))
}

// SendTo queues data for one client. It reports false when the client has
// left its room, whose Send channel is then closed, or when its buffer is
// full.
func (h *Hub) SendTo(client *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.Rooms[client.SessionID][client] {
		return false
	}
	select {
	case client.Send <- data:
		return true
	default:
		return false
	}
}

// Run handles unregister, broadcast and close events. It should be
// launched as a goroutine.
func (h *Hub) Run() {
	log := logger.Get()

	for {
		select {
		case client := <-h.Unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

			log.Info("client unregistered", zap.String("session_id", client.SessionID))

		case msg := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.Rooms[msg.SessionID] {
				select {
				case client.Send <- msg.Message:
				default:
					// Send buffer full; drop the slow client.
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()

		case sessionID := <-h.CloseRoom:
			h.mu.Lock()
			for client := range h.Rooms[sessionID] {
				h.removeLocked(client)
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of clients watching a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Rooms[sessionID])
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.Rooms[client.SessionID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.Rooms, client.SessionID)
	}
}

// ReadPump reads messages from the websocket connection and passes each to
// handler. It is intended to be run in a per-client goroutine.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.OnPong != nil {
			c.OnPong()
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				logger.Get().Warn("unexpected websocket close",
					zap.String("session_id", c.SessionID),
					zap.Error(err),
				)
			}
			break
		}
		handler(c, message)
	}
}

// WritePump sends messages from the Send channel to the websocket
// connection and pings the peer periodically. It is intended to be run in a
// per-client goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
