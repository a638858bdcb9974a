// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/partygames/internal/auth"
	"github.com/jason-s-yu/partygames/internal/cache"
	"github.com/jason-s-yu/partygames/internal/config"
	"github.com/jason-s-yu/partygames/internal/content"
	"github.com/jason-s-yu/partygames/internal/database"
	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/handlers"
	"github.com/jason-s-yu/partygames/internal/realtime"
	"github.com/jason-s-yu/partygames/internal/rooms"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generated, err := auth.InitFromSecret(cfg.SessionSecret)
	if err != nil {
		logger.Fatalf("failed to initialize session keys: %v", err)
	}
	if generated {
		logger.Warn("SESSION_SECRET not set, room sessions will not survive a restart")
	}

	var store rooms.Store
	if cfg.DatabaseURL != "" {
		pool, err := database.ConnectDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatalf("failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatalf("failed to migrate database: %v", err)
		}
		store = database.NewRoomRepo(pool)
	} else {
		logger.Info("DATABASE_URL not set, keeping rooms in memory")
		store = rooms.NewMemoryStore(logger)
	}

	var presence rooms.Presence
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		presence = cache.NewRedisPresence(rdb)
		logger.WithField("addr", cfg.RedisAddr).Info("connected to redis")
	} else {
		presence = rooms.NewMemoryPresence()
	}

	pools, err := content.Load(cfg.ContentDir, logger)
	if err != nil {
		logger.Fatalf("failed to load content: %v", err)
	}

	registry := rooms.NewRegistry(store, presence, logger)
	hub := realtime.NewHub(logger, cfg.PingInterval)
	manager := game.NewManager(pools, registry, hub, logger)
	defer manager.Shutdown()

	sweeper := &rooms.Sweeper{
		Registry:    registry,
		Interval:    cfg.CleanupInterval,
		IdleTimeout: cfg.RoomIdleTimeout,
		OnRemove:    manager.Stop,
		Logger:      logger,
	}
	go sweeper.Run(ctx)

	srv := &handlers.Server{
		Manager:       manager,
		Registry:      registry,
		Hub:           hub,
		Pools:         pools,
		Logger:        logger,
		FrontendURL:   cfg.FrontendURL,
		SecureCookies: cfg.SecureCookies,
	}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("graceful shutdown failed: %v", err)
		}
	}()

	logger.Infof("Running on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
