package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcarver/marketboard/internal/cache"
	"github.com/jcarver/marketboard/internal/clob"
	"github.com/jcarver/marketboard/internal/config"
	"github.com/jcarver/marketboard/internal/dataapi"
	"github.com/jcarver/marketboard/internal/events"
	"github.com/jcarver/marketboard/internal/gamma"
	"github.com/jcarver/marketboard/internal/httpapi"
	"github.com/jcarver/marketboard/internal/leaderboard"
	"github.com/jcarver/marketboard/internal/logging"
	"github.com/jcarver/marketboard/internal/markets"
	"github.com/jcarver/marketboard/internal/portfolio"
	"github.com/jcarver/marketboard/internal/ratelimit"
)

func main() {
	configPath := flag.String("config", os.Getenv("MARKETBOARD_CONFIG"), "path to JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Default().Error("Failed to load config", logging.WithError(err))
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	var (
		checker      ratelimit.Checker
		limiterAdmin *ratelimit.Limiter
		store        cache.Store
	)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		checker = ratelimit.NewRedis(client, "")
		store = cache.NewRedis(client, "")
		logger.Info("Using Redis backends", logging.WithField("addr", cfg.RedisAddr))
	} else {
		memLimiter := ratelimit.New()
		defer memLimiter.Stop()
		checker = memLimiter
		limiterAdmin = memLimiter

		memCache := cache.NewMemory()
		defer memCache.Stop()
		store = memCache
	}

	gammaClient := gamma.NewClient(gamma.Config{
		BaseURL: cfg.GammaBaseURL,
		Timeout: cfg.UpstreamTimeout(),
		MaxRPS:  cfg.UpstreamMaxRPS,
	})
	clobClient := clob.NewClient(clob.Config{
		BaseURL: cfg.ClobBaseURL,
		Timeout: cfg.UpstreamTimeout(),
		MaxRPS:  cfg.UpstreamMaxRPS,
	})
	dataClient := dataapi.NewClient(dataapi.Config{
		BaseURL: cfg.DataAPIBaseURL,
		Timeout: cfg.UpstreamTimeout(),
		MaxRPS:  cfg.UpstreamMaxRPS,
	})

	deps := httpapi.RouterDeps{
		Markets:     markets.NewService(gammaClient, clobClient, store, logger),
		Events:      events.NewService(gammaClient, store, logger),
		Leaderboard: leaderboard.NewService(dataClient, store, logger),
		Portfolio:   portfolio.NewService(dataClient, store, logger),
		Checker:     checker,
		Store:       store,
		RouteLimits: cfg.RouteLimits,
		AdminSecret: cfg.AdminSecret,
		Logger:      logger,
	}
	if limiterAdmin != nil {
		deps.LimiterAdmin = limiterAdmin
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      httpapi.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", logging.WithField("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", logging.WithError(err))
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("Shutting down", logging.WithField("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", logging.WithError(err))
		}
	}
}
