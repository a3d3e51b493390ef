package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"json-share-api/config"
	"json-share-api/internal/application/ports"
	"json-share-api/internal/application/services"
	redisCache "json-share-api/internal/infrastructure/cache/redis"
	"json-share-api/internal/infrastructure/db/postgres"
	"json-share-api/internal/infrastructure/db/postgres/share"
	"json-share-api/internal/infrastructure/links"
	"json-share-api/internal/infrastructure/metrics"
	"json-share-api/internal/infrastructure/mq"
	"json-share-api/internal/interface/api/rest"
	"json-share-api/internal/interface/api/rest/middleware"
	"json-share-api/pkg/rmqconsumer"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	redis      *goredis.Client
	cache      ports.ShareCache
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	events     ports.EventPublisher
	mq         ports.RabbitMQ
	mqConsumer ports.RMQConsumer
	sweeper    *services.Sweeper
}

func NewApp(ctx context.Context) (*App, error) {
	// config; a missing .env is fine, the environment may carry everything
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	cfg := config.Load()

	// logger
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize zap logger: %w", err)
	}

	// metrics
	mCounter := metrics.NewCounter()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	if err = r.SetTrustedProxies(cfg.App.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))
	r.Use(middleware.RequestTimeout(cfg.App.RequestTimeout))

	// httpServer
	httpSrv := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	app := &App{
		logger:   logger,
		cfg:      cfg,
		httpSrv:  httpSrv,
		router:   r,
		mCounter: mCounter,
		events:   mq.Discard{},
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		return nil, fmt.Errorf("DB config error: %w", err)
	}
	app.db, err = postgres.New(ctx, logger, dbDsn, cfg.DB.Timeout)
	if err != nil {
		return nil, err
	}

	// redis
	if cfg.Redis.Enabled() {
		app.redis, err = redisCache.NewClient(ctx, logger, cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.cache = redisCache.NewShareCache(app.redis, logger, cfg.Redis)
	} else {
		logger.Info("redis not configured, share cache disabled")
	}

	// rabbitMQ
	if cfg.MQ.Enabled() {
		if err = app.initMQ(ctx); err != nil {
			app.Close()
			return nil, err
		}
	} else {
		logger.Info("rabbitMQ not configured, lifecycle events disabled")
	}

	return app, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (a *App) initMQ(ctx context.Context) error {
	rabbitDsn, err := a.cfg.AMQPDSN()
	if err != nil {
		return fmt.Errorf("RabbitMQ config error: %w", err)
	}

	rbMQ := mq.New(a.cfg.MQ, a.logger, a.mCounter)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		return fmt.Errorf("failed to connect to rabbitMQ: %w", err)
	}
	a.mq = rbMQ
	if err = rbMQ.Init(); err != nil {
		return fmt.Errorf("failed init rabbitMQ: %w", err)
	}
	a.events = rbMQ

	// rmqConsumer
	rmqConsumer := rmqconsumer.New(a.cfg.MQ, a.logger, mq.RoutingKeys)
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		return fmt.Errorf("failed to connect rabbitMQ consumer: %w", err)
	}
	a.mqConsumer = rmqConsumer
	if err = rmqConsumer.Init(); err != nil {
		return fmt.Errorf("failed to init rabbitMQ consumer: %w", err)
	}

	return nil
}

func (a *App) Close() {
	if a.mqConsumer != nil {
		_ = a.mqConsumer.Close()
	}
	if a.mq != nil {
		_ = a.mq.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	if a.mq != nil {
		g.Go(func() error {
			a.mq.PublisherWorker(ctx)
			return nil
		})
	}

	if a.mqConsumer != nil {
		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	if a.sweeper != nil {
		g.Go(func() error {
			a.sweeper.Run(ctx)
			return nil
		})
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// repos
	shareRepo := share.NewRepository(a.db)

	// services
	linkBuilder := links.New(a.logger, a.cfg.App.PublicBaseURL)
	shareService := services.NewShareService(shareRepo, a.cache, linkBuilder, a.events, a.mCounter, a.logger, a.cfg.DB.Timeout)
	if a.cfg.Sweep.Enabled() {
		a.sweeper = services.NewSweeper(shareRepo, a.cache, a.events, a.mCounter, a.logger,
			a.cfg.Sweep.Interval, a.cfg.Sweep.Grace, a.cfg.DB.Timeout)
	}

	// controllers
	limiter := middleware.NewRateLimiter(a.cfg.Limits.CreateRPS, a.cfg.Limits.CreateBurst, a.cfg.Limits.IdleTTL, a.mCounter)
	rest.NewShareController(a.router, shareService, a.logger, limiter, a.cfg.IsDevelopment())

	// ops
	a.router.GET(rest.RouteHealth, a.healthHandler)
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), a.cfg.DB.Timeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Warn("health check: db ping failed", zap.Error(err))
		c.Status(http.StatusServiceUnavailable)
		return
	}

	c.Status(http.StatusOK)
}

func (a *App) Logger() *zap.Logger { return a.logger }
