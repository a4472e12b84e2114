package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/distcluster/coordinator/internal/cluster/events"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 15 * time.Second
)

var upgrader = websocket.Upgrader{
	// The Frontend serves clients and operator tooling only, never
	// cross-origin browser pages with credentials, so any origin may
	// open the push channel (spec §6 names no origin restriction).
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS handles GET /ws: upgrades to a push channel that delivers
// initial_status followed by a stream of node/job transition events
// (spec §4.5, §6).
func (f *Frontend) WS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := f.bus.Subscribe(events.Event{
		Type: events.TypeInitialStatus,
		Data: initialStatusPayload{Nodes: f.registry.Snapshot(), Stats: f.stats.Snapshot()},
	})
	defer f.bus.Unsubscribe(sub)

	ctx := c.Request.Context()
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	// Drain (and discard) inbound client frames on their own goroutine so
	// the connection's close is detected promptly; this channel never
	// carries server-initiated commands (spec §4.5 is push-only).
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			return
		case <-closed:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-sub.Outbound:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
