package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"predman/internal/config"
	"predman/internal/db"
	httpServer "predman/internal/http"
	"predman/internal/logger"
	"predman/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	if err := db.Migrate(dbPool); err != nil {
		logger.Fatal("migrations failed", "error", err)
	}

	rdb := connectRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	r := gin.Default()

	// CORS for the web frontend
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	svc := httpServer.NewServices(dbPool, rdb, cfg)
	httpServer.RegisterRoutes(r, dbPool, rdb, svc, cfg, version)
	svc.Hub.StartCleanup()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go service.NewDailyRefresher(svc.Stats, cfg.StatsRefreshHour).Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// connectRedis returns nil when redis is not configured or unreachable; the
// server then runs without the board cache and limits requests in memory.
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("redis not configured")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, continuing without it", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return nil
	}
	logger.Info("redis connected", "addr", cfg.RedisAddr)
	return rdb
}
