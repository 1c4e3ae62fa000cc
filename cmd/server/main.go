package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketgateway/config"
	"marketgateway/internal/cache"
	"marketgateway/internal/catalog"
	"marketgateway/internal/gateway"
	"marketgateway/internal/handler"
	"marketgateway/internal/logger"
	"marketgateway/internal/metrics"
	"marketgateway/internal/middleware"
	"marketgateway/internal/provider"
	"marketgateway/internal/provider/factset"
	"marketgateway/internal/provider/schwab"
	"marketgateway/internal/provider/synthetic"
	"marketgateway/internal/stream"
)

func main() {
	cfg, err := config.Load(os.Getenv("MDGW_CONFIG_DIR"))
	if err != nil {
		panic(err)
	}

	log, err := logger.New("marketgateway", cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting market data gateway", zap.String("addr", cfg.Server.Addr))

	store, closeStore := buildStore(cfg, log)
	defer closeStore()

	cat := buildCatalog(cfg, log)

	schwabClient := schwab.New(schwab.Config{
		APIKey:     cfg.Providers.Schwab.APIKey,
		APISecret:  cfg.Providers.Schwab.APISecret,
		TOTPSecret: cfg.Providers.Schwab.TOTPSecret,
		BaseURL:    cfg.Providers.Schwab.BaseURL,
	}, log)
	factsetClient := factset.New(factset.Config{
		Username: cfg.Providers.Factset.Username,
		APIKey:   cfg.Providers.Factset.APIKey,
		BaseURL:  cfg.Providers.Factset.BaseURL,
	}, log)
	log.Info("provider chain configured",
		zap.Bool("schwab", schwabClient.Usable()),
		zap.Bool("factset", factsetClient.Usable()))

	m := metrics.New()
	svc := gateway.New(gateway.Deps{
		Store: store,
		TTL: gateway.TTL{
			Quote:        cfg.Cache.TTL.Quote,
			Historical:   cfg.Cache.TTL.Historical,
			Fundamentals: cfg.Cache.TTL.Fundamentals,
			News:         cfg.Cache.TTL.News,
		},
		Fallback:     synthetic.New(cat),
		Catalog:      cat,
		Metrics:      m,
		Log:          log,
		Quoters:      []provider.Quoter{schwabClient, factsetClient},
		Historians:   []provider.Historian{schwabClient, factsetClient},
		Fundamentals: []provider.FundamentalsSource{schwabClient, factsetClient},
		Searchers:    []provider.Searcher{factsetClient},
		News:         []provider.NewsSource{factsetClient},
	})

	hub := stream.NewHub(svc, cfg.Stream.PushInterval, m, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	handler.New(svc, hub, m, log).Register(router)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()
	log.Info("gateway listening", zap.String("addr", cfg.Server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	hub.Shutdown()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown incomplete", zap.Error(err))
	}
	log.Info("stopped")
}

// buildStore selects the cache backend. An unreachable Redis degrades
// to the in-memory store instead of keeping the gateway down; once
// running, the redis store treats failed reads as misses.
func buildStore(cfg *config.Config, log *zap.Logger) (cache.Store, func()) {
	if cfg.Cache.Backend == "redis" {
		rs, err := cache.NewRedis(cache.RedisConfig{
			Addr:      cfg.Cache.Redis.Addr,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
		}, log)
		if err == nil {
			log.Info("cache backend: redis", zap.String("addr", cfg.Cache.Redis.Addr))
			return rs, func() { rs.Close() }
		}
		log.Warn("redis unavailable, degrading to in-memory cache", zap.Error(err))
	}

	mem := cache.NewMemory()
	log.Info("cache backend: memory")
	return mem, func() { mem.Close() }
}

// buildCatalog loads the instrument catalog from SQLite when a path is
// configured, otherwise uses the built-in static set.
func buildCatalog(cfg *config.Config, log *zap.Logger) *catalog.Catalog {
	if cfg.Catalog.SQLitePath == "" {
		return catalog.NewStatic()
	}
	cat, err := catalog.OpenSQLite(cfg.Catalog.SQLitePath, log)
	if err != nil {
		log.Warn("sqlite catalog unavailable, using static catalog", zap.Error(err))
		return catalog.NewStatic()
	}
	return cat
}
