// Package httpapi wires the gin router: token issuance, presence endpoints
// and the websocket upgrade path.
package httpapi

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/livegate/livegate/internal/adapters/ws"
	"github.com/livegate/livegate/internal/config"
)

// ClientTokenMiddleware tags every browser with a stable cookie id, used
// for rate-limit diagnostics and request logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, api *API, wsctl *ws.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("LivegateSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "httpapi").Str("static", cfg.StaticPath).Msg("router setup")

	apiGroup := r.Group("/api")
	apiGroup.GET("/token", api.Token)
	apiGroup.GET("/heartbeat", api.Heartbeat)
	apiGroup.GET("/leave", api.Leave)
	apiGroup.GET("/viewers", api.Viewers)
	apiGroup.GET("/channels", api.Channels)

	r.GET("/ws/:channel", func(c *gin.Context) {
		wsctl.HandleChannel(ctx, c)
	})

	return r
}
