package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/products-api/internal/config"
	"github.com/rogerio-castellano/products-api/internal/db"
	router "github.com/rogerio-castellano/products-api/internal/http"
	"github.com/rogerio-castellano/products-api/internal/http/gate"
	"github.com/rogerio-castellano/products-api/internal/http/handlers"
	"github.com/rogerio-castellano/products-api/internal/protect"
	"github.com/rogerio-castellano/products-api/internal/repo"
	"go.uber.org/zap"
)

// @title Postgres Products API
// @version 1.0
// @description Product CRUD API guarded by a rate-limit / bot-shield / write-token gate.
// @BasePath /
func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("could not connect to database", "error", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		sugar.Fatalw("could not ensure schema", "error", err)
	}

	// Redis holds the authoritative rate-limit buckets and the denial audit
	// log. Without it the in-process bucket substitutes, per instance.
	var limiter protect.RateLimiter
	var audit *gate.AuditLog
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			sugar.Fatalw("could not connect to redis", "error", err)
		}
		defer rdb.Close()

		prefix := "protect:rate"
		if cfg.ProtectKey != "" {
			prefix = "protect:" + cfg.ProtectKey + ":rate"
		}
		limiter = protect.NewRedisLimiter(rdb, prefix, cfg.RateCapacity, cfg.RateRefill, cfg.RateInterval)
		audit = gate.NewAuditLog(rdb)
	} else {
		sugar.Warn("REDIS_ADDR not set, using in-process rate limiter")
		local := protect.NewLocalLimiter(cfg.RateCapacity, cfg.RateRefill, cfg.RateInterval)
		local.StartCleanupLoop(context.Background(), cfg.RateInterval, 6*cfg.RateInterval)
		limiter = local
	}

	g := gate.New(gate.Options{
		Evaluator:     protect.NewGateway(limiter, protect.NewBotShield()),
		WriteToken:    cfg.WriteToken,
		BypassToken:   cfg.BypassToken,
		TrustedAddrs:  cfg.TrustedAddrs,
		BotCheckReads: cfg.BotCheckReads,
		Audit:         audit,
		Log:           sugar,
	})

	products := handlers.NewProductHandler(repo.NewPostgresProductRepository(database), sugar)
	status := handlers.NewStatusHandler()

	r := router.NewRouter(g, products, status, sugar)
	addr := fmt.Sprintf(":%d", cfg.Port)
	sugar.Infow("server running", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
