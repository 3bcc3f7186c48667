package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"askroom/internal/feed"
	"askroom/internal/services"
	"askroom/internal/transport/httpdto"
	"askroom/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests into room-watching WebSocket clients.
// Connect query params: room (share code), token (bearer token).
type Handler struct {
	auth      *services.AuthService
	rooms     *services.RoomService
	bridge    *feed.Bridge
	snapshots *feed.SnapshotFeed
	hub       *Hub
	log       *logger.Logger
}

func NewHandler(auth *services.AuthService, rooms *services.RoomService, bridge *feed.Bridge, snapshots *feed.SnapshotFeed, hub *Hub, log *logger.Logger) *Handler {
	return &Handler{auth: auth, rooms: rooms, bridge: bridge, snapshots: snapshots, hub: hub, log: log}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	principal, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	rm, err := h.rooms.Resolve(c.Request.Context(), c.Query("room"))
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("room not found", "NOT_FOUND"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, principal.ID.String(), rm.Code)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	// Subscribe before the initial reload so no update commits unseen in
	// between; anything published during the reload waits in the
	// subscription buffer and goes out after the first frame.
	sub := h.snapshots.Subscribe(rm.Code)

	// First frame is the current state so the client never renders empty.
	if snap, err := h.bridge.Reload(c.Request.Context(), rm.Code); err == nil {
		if payload := marshalFrame(snap); payload != nil {
			client.SendMessage(payload)
		}
	} else if h.log != nil {
		h.log.Warnf("initial snapshot for %s failed: %v", rm.Code, err)
	}

	var forward sync.WaitGroup
	forward.Add(1)
	go func() {
		defer forward.Done()
		for snap := range sub.Updates() {
			if payload := marshalFrame(snap); payload != nil {
				client.SendMessage(payload)
			}
		}
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		// Clients never send application frames; the read loop only
		// notices disconnects and keeps the deadline fresh.
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}

	// Closing the subscription first lets the forward goroutine drain
	// before the hub tears the client down.
	sub.Close()
	forward.Wait()
	h.hub.Unregister(client)
}

func marshalFrame(snap feed.Snapshot) []byte {
	payload, err := json.Marshal(feed.Frame{Type: "snapshot", Snapshot: snap})
	if err != nil {
		return nil
	}
	return payload
}
