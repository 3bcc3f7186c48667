package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client represents one WebSocket connection watching a room.
type Client struct {
	ID       string          // Unique client ID
	UserID   string          // Authenticated participant or admin ID
	RoomCode string          // Room this connection watches
	Conn     *websocket.Conn // WebSocket connection
	Send     chan []byte     // Outbound frame channel
	mu       sync.Mutex      // Protects conn writes
}

func NewClient(conn *websocket.Conn, userID, roomCode string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		RoomCode: roomCode,
		Conn:     conn,
		Send:     make(chan []byte, 256),
	}
}

// WriteLoop drains the Send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
			c.mu.Unlock()
		case <-ticker.C:
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			c.mu.Unlock()
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	_ = c.Conn.Close()
	c.mu.Unlock()
}

// SendMessage queues a frame without blocking; when the client cannot keep
// up, stale snapshots are dropped since every frame carries full state.
func (c *Client) SendMessage(msg []byte) {
	select {
	case c.Send <- msg:
	default:
		// Channel full, frame dropped
	}
}
