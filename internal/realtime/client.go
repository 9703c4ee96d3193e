package realtime

import (
	"log/slog"
	"sync"
	"time"

	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
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

	sendBufferSize = 256
)

// Client is one /ws connection. Reads run on the handler goroutine, writes on
// a dedicated WritePump goroutine fed by Send.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	// IncomingHandler is called for every text frame read from the peer.
	IncomingHandler func(*Client, []byte)

	limiter *rate.Limiter

	mu   sync.RWMutex
	mood models.Mood
}

// NewClient creates a client whose inbound frames are limited to perSecond
// (burst of twice that). perSecond <= 0 disables the limit.
func NewClient(conn *websocket.Conn, perSecond float64) *Client {
	limit := rate.Inf
	burst := 0
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(int(perSecond*2), 1)
	}
	return &Client{
		ID:      uuid.NewString(),
		Conn:    conn,
		Send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Mood returns the mood room the client joined, or "" when it joined none.
func (c *Client) Mood() models.Mood {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mood
}

// SetMood tags the client with a mood room.
func (c *Client) SetMood(m models.Mood) {
	c.mu.Lock()
	c.mood = m
	c.mu.Unlock()
}

// Allow reports whether another inbound frame fits the client's rate limit.
func (c *Client) Allow() bool {
	return c.limiter.Allow()
}

// ReadPump reads frames until the peer goes away, then removes the client
// from registry.
func (c *Client) ReadPump(registry *Registry) {
	defer func() {
		registry.Remove(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Debug("websocket read failed", slog.String("client_id", c.ID), slog.String("error", err.Error()))
			}
			return
		}

		if c.IncomingHandler != nil {
			c.IncomingHandler(c, message)
		}
	}
}

// WritePump drains Send to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The registry closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking. Messages for a full buffer are dropped.
func (c *Client) TrySend(message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues("closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
		return true
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues("full").Inc()
		return false
	}
}
