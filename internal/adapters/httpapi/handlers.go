package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/livegate/livegate/internal/domain"
	"github.com/livegate/livegate/internal/presence"
	"github.com/livegate/livegate/internal/room"
	"github.com/livegate/livegate/internal/token"
)

// API serves token issuance and the presence endpoints. Builder is nil when
// signing credentials are not configured; presence still works then.
type API struct {
	Builder     *token.Builder
	Store       presence.Store
	Hub         *room.Hub
	Limiter     *RateLimiter
	TokenExpiry time.Duration

	now func() time.Time
}

func NewAPI(builder *token.Builder, store presence.Store, hub *room.Hub, limiter *RateLimiter, tokenExpiry time.Duration) *API {
	if tokenExpiry <= 0 {
		tokenExpiry = time.Hour
	}
	return &API{
		Builder:     builder,
		Store:       store,
		Hub:         hub,
		Limiter:     limiter,
		TokenExpiry: tokenExpiry,
		now:         time.Now,
	}
}

// Token handles GET /api/token?channel&role&uid&viewerId.
func (a *API) Token(c *gin.Context) {
	channel := c.Query("channel")
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel is required"})
		return
	}
	role, err := token.ParseRole(c.Query("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be publisher or subscriber"})
		return
	}
	uid64, err := strconv.ParseUint(c.DefaultQuery("uid", "0"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uid must be a non-negative integer"})
		return
	}
	if a.Limiter != nil && !a.Limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}
	if a.Builder == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issuance is not configured"})
		return
	}

	tok, err := a.Builder.Build(channel, uint32(uid64), role, uint32(a.now().Unix()), uint32(a.TokenExpiry/time.Second))
	if err != nil {
		log.Error().Err(err).Str("module", "httpapi").Str("channel", channel).Msg("token build failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	// An accompanying viewerId registers the caller as an out-of-band
	// member right away, so heartbeat-only clients count from the first
	// request.
	if viewerID := c.Query("viewerId"); viewerID != "" {
		if err := a.registerHeartbeat(c.Request.Context(), channel, viewerID); err != nil {
			log.Warn().Err(err).Str("module", "httpapi").Str("channel", channel).Msg("presence registration failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   tok,
		"appId":   a.Builder.AppID(),
		"channel": channel,
		"uid":     uid64,
	})
}

// Heartbeat handles GET /api/heartbeat?channel&viewerId.
func (a *API) Heartbeat(c *gin.Context) {
	channel, viewerID, ok := presenceParams(c)
	if !ok {
		return
	}
	if err := a.registerHeartbeat(c.Request.Context(), channel, viewerID); err != nil {
		log.Error().Err(err).Str("module", "httpapi").Str("channel", channel).Msg("heartbeat failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "presence store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Leave handles GET /api/leave?channel&viewerId.
func (a *API) Leave(c *gin.Context) {
	channel, viewerID, ok := presenceParams(c)
	if !ok {
		return
	}
	if err := a.Store.Remove(c.Request.Context(), channel, viewerID); err != nil {
		log.Error().Err(err).Str("module", "httpapi").Str("channel", channel).Msg("leave failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "presence store unavailable"})
		return
	}
	if rm, exists := a.Hub.Peek(domain.ChannelName(channel)); exists {
		rm.Notify(room.ViewerLeave, domain.ViewerID(viewerID))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Viewers handles GET /api/viewers?channel. The room is authoritative; with
// no live room instance the store's non-expired records are counted
// instead, stale by at most the heartbeat TTL.
func (a *API) Viewers(c *gin.Context) {
	channel := c.Query("channel")
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel is required"})
		return
	}

	var count int
	if rm, exists := a.Hub.Peek(domain.ChannelName(channel)); exists {
		count = rm.Count()
	} else {
		n, err := a.Store.CountChannel(c.Request.Context(), channel)
		if err != nil {
			log.Error().Err(err).Str("module", "httpapi").Str("channel", channel).Msg("store count failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "presence store unavailable"})
			return
		}
		count = n
	}
	c.JSON(http.StatusOK, gin.H{"channel": channel, "viewerCount": count})
}

// Channels handles GET /api/channels.
func (a *API) Channels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": a.Hub.List()})
}

func (a *API) registerHeartbeat(ctx context.Context, channel, viewerID string) error {
	if err := a.Store.Heartbeat(ctx, channel, viewerID); err != nil {
		return err
	}
	// Write-through: the room's out-of-band set mirrors the store and is
	// never refreshed by polling.
	a.Hub.GetOrCreate(domain.ChannelName(channel)).Notify(room.ViewerJoin, domain.ViewerID(viewerID))
	return nil
}

func presenceParams(c *gin.Context) (channel, viewerID string, ok bool) {
	channel = c.Query("channel")
	viewerID = c.Query("viewerId")
	if channel == "" || viewerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel and viewerId are required"})
		return "", "", false
	}
	return channel, viewerID, true
}
