package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamasit07/join-dots/internal/config"
	"github.com/iamasit07/join-dots/internal/repository/redis"
	"github.com/iamasit07/join-dots/internal/service/cleanup"
	"github.com/iamasit07/join-dots/internal/service/game"
	transportHttp "github.com/iamasit07/join-dots/internal/transport/http"
	"github.com/iamasit07/join-dots/internal/transport/websocket"
	"github.com/iamasit07/join-dots/pkg/auth"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 1. Snapshot mirror (optional)
	var cache game.SnapshotCache
	if cfg.RedisEnabled {
		client := redis.InitRedis(ctx, redis.Options{Addr: cfg.RedisURL, Password: cfg.RedisPassword})
		if client != nil {
			defer client.Close()
			cache = redis.NewRedisCache(client)
		}
	}

	// 2. Services
	connManager := websocket.NewConnectionManager()
	sessionManager := game.NewSessionManager(game.Options{
		Rules:       cfg.Rules,
		DropDelay:   cfg.DropDelay,
		MaxSessions: cfg.MaxSessions,
		SnapshotTTL: cfg.SnapshotTTL,
		FinishedTTL: cfg.FinishedSessionTTL,
		IdleTTL:     cfg.IdleSessionTTL,
	}, connManager, cache)
	gameService := game.NewService(sessionManager, auth.NewSeatIssuer(cfg.SeatTokenSecret, cfg.SeatTokenTTL))

	// 3. Background workers
	cleanupWorker := cleanup.NewWorker(sessionManager, cfg.CleanupInterval)
	go cleanupWorker.Start(ctx)

	// 4. Handlers and router
	gameHandler := transportHttp.NewGameHandler(gameService, cfg.SeatTokenTTL, cfg.IsProduction())
	wsHandler := websocket.NewHandler(connManager, gameService, cfg.AllowedOrigins)
	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
	}, gameHandler, wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s (board %dx%d, %d to win)", cfg.Port, cfg.Rules.Rows, cfg.Rules.Columns, cfg.Rules.WinLength)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	sessionManager.Close()

	log.Println("Server exited gracefully")
}
