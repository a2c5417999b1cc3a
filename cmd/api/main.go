package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/outfitly/storefront-api/internal/router"
	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/logger"
	"github.com/outfitly/storefront-api/pkg/mongo"
	"github.com/outfitly/storefront-api/pkg/redis"
	"github.com/outfitly/storefront-api/pkg/shutdown"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Options{
		Service: "storefront-api",
		Env:     global.GetEnvOrDefault("ENV", "dev"),
		Level:   global.GetEnvOrDefault("LOG_LEVEL", "info"),
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	bootCtx, bootCancel := context.WithTimeout(ctx, 10*time.Second)
	defer bootCancel()

	db, err := mongo.Connect(bootCtx, global.GetMongoURI(), global.GetDatabaseName())
	if err != nil {
		log.Error("mongodb connection failed", "err", err)
		os.Exit(1)
	}
	if err := db.EnsureIndexes(bootCtx); err != nil {
		log.Error("index bootstrap failed", "err", err)
		os.Exit(1)
	}
	log.Info("connected to mongodb", "database", global.GetDatabaseName())

	var cache *redis.Cache
	if global.GetEnvOrDefault("REDIS_ENABLED", "true") == "true" {
		cache = redis.New()
		if err := cache.Ping(bootCtx); err != nil {
			log.Warn("redis unavailable, product caching disabled", "err", err)
			cache = nil
		}
	}

	handler := router.NewHandler(db.Stores(), cache, global.GetJWTSecret(), db.Ping, log)
	engine := router.NewEngine()
	handler.RegisterRoutes(engine)

	addr := ":" + global.GetEnvOrDefault("PORT", "8000")
	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := server.Shutdown(stopCtx); err != nil {
		log.Error("server shutdown failed", "err", err)
	}
	if cache != nil {
		_ = cache.Close()
	}
	if err := db.Close(stopCtx); err != nil {
		log.Error("mongodb disconnect failed", "err", err)
	}
}
