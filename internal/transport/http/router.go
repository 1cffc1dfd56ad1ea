package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/join-dots/internal/transport/http/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	StaticDir      string
}

// NewRouter wires every HTTP route. ws may be nil when no websocket
// endpoint is served.
func NewRouter(cfg RouterConfig, games *GameHandler, ws gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	seatMW := middleware.SeatMiddleware(games.Service)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "games": games.Service.Sessions.Count()})
	})

	api := router.Group("/api/games")
	{
		api.POST("", games.CreateGame)
		api.GET("", games.GetLiveGames)
		api.GET("/:id", games.GetGame)
		api.GET("/:id/preview/:col", games.Preview)

		// Seat-holder routes
		api.POST("/:id/moves", seatMW, games.MakeMove)
		api.POST("/:id/reset", seatMW, games.Reset)
		api.DELETE("/:id", seatMW, games.DeleteGame)
	}

	// WebSocket Route (seat checked inside the WS handler itself)
	if ws != nil {
		router.GET("/ws", ws)
	}

	if cfg.StaticDir != "" {
		serveStatic(router, cfg.StaticDir)
	}

	return router
}

// serveStatic serves the presentation bundle with an SPA fallback
func serveStatic(router *gin.Engine, dir string) {
	if _, err := os.Stat(dir); err != nil {
		return
	}

	index := filepath.Join(dir, "index.html")
	router.Static("/assets", filepath.Join(dir, "assets"))
	router.GET("/", func(c *gin.Context) {
		c.File(index)
	})

	router.NoRoute(func(c *gin.Context) {
		path := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))

		// Serve actual static files if they exist
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}

		// For API and asset requests that don't exist, return 404
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/assets/") || strings.HasSuffix(p, ".css") || strings.HasSuffix(p, ".js") {
			c.Status(http.StatusNotFound)
			return
		}

		// SPA fallback
		c.File(index)
	})
}
