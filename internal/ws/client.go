// internal/ws/client.go
//
// gorilla/websocket binding for the gateway.
// Responsibilities:
//   - Upgrade HTTP requests and register the connection.
//   - Run the read/write pumps: reads dispatch into the gateway, writes
//     drain a buffered send channel under a write deadline.
//   - Rate-limit inbound frames per connection.
//   - Turn read errors (including normal closes) into the disconnect event.

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxFrameSize   = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin policy is enforced by the HTTP layer's CORS setup;
	// the socket endpoint accepts the configured client origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection bound to the gateway.
type Client struct {
	id      string
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	mu     sync.Mutex // guards closed
	closed bool
}

// ID is the connection identifier players are keyed on for turn checks.
func (c *Client) ID() string { return c.id }

// Send marshals and enqueues an event without blocking. If the client's
// buffer is full the frame is dropped; the next gameState resynchronizes a
// slow reader.
func (c *Client) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("conn", c.id).Msg("marshal event")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// A broadcast raced a disconnect; the frame has no reader anyway.
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("conn", c.id).Msg("send buffer full, dropping frame")
	}
}

// closeSend marks the client dead and closes the send channel so the write
// pump drains and exits.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ServeWS upgrades the request and starts the connection's pumps.
func ServeWS(g *Gateway, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	c := &Client{
		id:      uuid.NewString(),
		gateway: g,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		// A human submits at most a few events per second; anything past
		// this is a misbehaving client.
		limiter: rate.NewLimiter(5, 10),
	}
	g.Register(c)
	log.Info().Str("conn", c.id).Msg("connected")

	go c.writePump()
	// The request context dies when the upgrade handler returns; the
	// connection outlives it.
	go c.readPump(context.Background())
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.gateway.Disconnect(c)
		c.closeSend()
		_ = c.conn.Close()
		log.Info().Str("conn", c.id).Msg("disconnected")
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn", c.id).Msg("read error")
			}
			return
		}
		if !c.limiter.Allow() {
			log.Warn().Str("conn", c.id).Msg("rate limited, dropping frame")
			continue
		}
		c.gateway.HandleMessage(ctx, c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
