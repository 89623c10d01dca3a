package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod is the interval between transport-level pings. Must be
	// less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum inbound message size allowed from the peer.
	maxMessageSize = 4096

	// sendBufferSize is the capacity of a client's outbound queue. A client
	// that falls this far behind is dropped rather than blocking broadcasts.
	sendBufferSize = 32
)

// Client is the server-side endpoint of one live websocket connection. It
// pumps messages between the connection and the hub and answers the
// client-side protocol (ping, get_tasks).
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	tasks  store.TaskReader
	logger *slog.Logger

	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// Ensure Client satisfies the hub's Handle interface
var _ Handle = (*Client)(nil)

// NewClient wraps an upgraded websocket connection for the given user.
// The caller registers the client with the hub and starts Run.
func NewClient(
	h *Hub,
	conn *websocket.Conn,
	userID uuid.UUID,
	tasks store.TaskReader,
	logger *slog.Logger,
) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		userID: userID,
		tasks:  tasks,
		logger: logger.With("component", "ws_client", "user_id", userID),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Enqueue implements Handle. It never blocks: a closed client or a full
// send buffer reports failure so the hub drops the client instead of
// stalling a broadcast.
func (c *Client) Enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close implements Handle. Safe to call multiple times, and safe to race
// with Enqueue: the send channel is never closed, writers are fenced off by
// the closed flag, and writePump is told to exit through done.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// Run services the connection until the peer disconnects or a transport
// error occurs. It owns both pumps and guarantees the hub registration is
// released on every exit path, so a dead connection is never broadcast to.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

// readPump reads inbound protocol messages until the connection errors or
// closes, then releases the hub registration.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c.userID, c)
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				c.logger.Debug("websocket closed unexpectedly", "error", err)
			}
			return
		}

		c.handleMessage(ctx, data)
	}
}

// handleMessage dispatches one inbound client message. Malformed input gets
// a typed error reply; the connection stays open.
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(errorMessage{Type: "error", Message: "Invalid JSON"})
		return
	}

	switch msg.Type {
	case "ping":
		c.reply(pongMessage{Type: "pong"})

	case "get_tasks":
		tasks, err := c.tasks.ListByAssignee(ctx, c.userID)
		if err != nil {
			c.logger.Error("failed to list tasks for live channel", "error", err)
			c.reply(errorMessage{Type: "error", Message: "Failed to load tasks"})
			return
		}
		if tasks == nil {
			tasks = []*domain.TaskSnapshot{}
		}
		c.reply(tasksMessage{Type: "tasks_data", Tasks: tasks})

	default:
		c.logger.Debug("ignoring unknown client message type", "type", msg.Type)
	}
}

// reply queues an outbound protocol message on this connection only.
func (c *Client) reply(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("failed to marshal reply", "error", err)
		return
	}
	if !c.Enqueue(data) {
		c.logger.Warn("dropping reply, send buffer full")
	}
}

// writePump drains the send channel to the connection and keeps the
// transport alive with periodic pings. It exits when the client is closed
// (unregistration) or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
