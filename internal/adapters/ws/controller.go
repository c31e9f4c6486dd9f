// Package ws bridges websocket connections into channel rooms.
package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/livegate/livegate/internal/domain"
	"github.com/livegate/livegate/internal/room"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Hub       *room.Hub
	ReadLimit int64
}

func NewController(hub *room.Hub, readLimit int64) *Controller {
	return &Controller{Hub: hub, ReadLimit: readLimit}
}

// HandleChannel upgrades the request and binds the session to its room.
// Query params: role (host|viewer, default viewer), name (default Anonymous).
func (ctl *Controller) HandleChannel(ctx context.Context, c *gin.Context) {
	channel := domain.ChannelName(c.Param("channel"))
	role := domain.ParseSessionRole(c.Query("role"))
	name := domain.SanitizeDisplayName(c.Query("name"))

	wsock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}
	if ctl.ReadLimit > 0 {
		wsock.SetReadLimit(ctl.ReadLimit)
	}

	conn := newConn(wsock)
	rm := ctl.Hub.GetOrCreate(channel)
	sid := rm.Upgrade(conn, role, name)
	log.Info().Str("module", "ws").Str("channel", string(channel)).Str("sid", string(sid)).Msg("new channel connection")

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		conn.writePump(ctx)
	}()
	go ctl.readPump(ctx, cancel, rm, sid, conn)
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, rm *room.Room, sid domain.SessionID, conn *Conn) {
	defer func() {
		cancel()
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			rm.HandleClose(sid)
			return
		default:
			_, data, err := conn.ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					log.Warn().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("connection error")
					rm.HandleError(sid)
				} else {
					rm.HandleClose(sid)
				}
				return
			}
			rm.HandleMessage(sid, data)
		}
	}
}
