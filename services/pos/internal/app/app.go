package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/database"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/health"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/httpclient"
	pkgkafka "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/kafka"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/middleware"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/tracing"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/client"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/config"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/event"
	handler "github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/handler/http"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/nationalid"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/pricing"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/repository/memory"
	redisrepo "github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/repository/redis"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/service"
)

// App wires together all dependencies and runs the POS service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	sessions       *memory.SessionStore
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "pos",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		Insecure:       true,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	if err := nationalid.RegisterValidation(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	calc, err := pricing.NewCalculator(cfg.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("init pricing: %w", err)
	}

	// Backend clients. Every backend gets its own breaker so one failing
	// service does not trip calls to the others.
	downstream := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.DownstreamTimeout) * time.Second,
		MaxRetries:      cfg.DownstreamRetries,
		RetryWaitMin:    200 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 50,
	})
	// The shared client retries idempotent reads only. Sale creation also
	// gets a client with no retries and its own timeout.
	salesHTTP := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.SalesTimeout) * time.Second,
		MaxRetries:      0,
		MaxConnsPerHost: 50,
	})

	breaker := func(name string, base *httpclient.Client) *httpclient.CircuitBreakerClient {
		cbCfg := httpclient.CircuitBreakerConfig{
			Name:         "pos-" + name,
			MaxRequests:  cfg.CBMaxRequests,
			Interval:     time.Duration(cfg.CBInterval) * time.Second,
			Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
			FailureRatio: cfg.CBFailureRatio,
			MinRequests:  cfg.CBMinRequests,
		}
		return httpclient.NewCircuitBreakerClient(base, cbCfg, logger).
			WithFallback(client.CircuitOpenFallback(name))
	}

	catalogClient := client.NewCatalogClient(breaker("catalog", downstream), cfg.CatalogServiceURL)
	inventoryClient := client.NewInventoryClient(breaker("inventory", downstream), cfg.InventoryServiceURL)
	salesBreaker := breaker("sales", salesHTTP)
	salesClient := client.NewSalesClient(salesBreaker, cfg.SalesServiceURL)
	customerClient := client.NewCustomerClient(breaker("customers", downstream), cfg.SalesServiceURL)
	prescriptionClient := client.NewPrescriptionClient(breaker("prescriptions", downstream), cfg.SalesServiceURL)
	reportingClient := client.NewReportingClient(breaker("reporting", downstream), cfg.ReportingServiceURL)
	logger.Info("backend clients initialized",
		slog.String("catalog", cfg.CatalogServiceURL),
		slog.String("inventory", cfg.InventoryServiceURL),
		slog.String("sales", cfg.SalesServiceURL),
		slog.String("reporting", cfg.ReportingServiceURL),
	)

	healthHandler := health.NewHandler()

	// Optional Redis dashboard cache.
	var (
		rdb            *redis.Client
		dashboardCache service.DashboardCache
	)
	if cfg.RedisEnabled() {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Host = cfg.RedisHost
		redisCfg.Port = cfg.RedisPort
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err = database.NewRedisClient(ctx, redisCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", redisCfg.Addr()),
			slog.Int("db", cfg.RedisDB),
		)
		if cfg.SlowCommandThresholdMs > 0 {
			database.SetSlowCommandLogging(time.Duration(cfg.SlowCommandThresholdMs)*time.Millisecond, logger)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, rdb, "pos-service"); err != nil {
			logger.Warn("redis pool metrics not registered", slog.String("error", err.Error()))
		}
		dashboardCache = redisrepo.NewDashboardCache(rdb, time.Duration(cfg.DashboardCacheTTL)*time.Second)
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		logger.Info("redis not configured, dashboard cache disabled")
	}

	// Optional Kafka producer for sale events.
	var (
		producer *pkgkafka.Producer
		events   service.EventPublisher
	)
	if cfg.KafkaEnabled() {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(producer, logger)
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka not configured, sale events disabled")
	}

	// Build the dependency graph.
	sessions := memory.NewSessionStore(cfg.SessionTTL(), logger)
	cartService := service.NewCartService(catalogClient, inventoryClient, logger)
	checkoutService := service.NewCheckoutService(calc, salesClient, events, logger, time.Duration(cfg.SalesTimeout)*time.Second)
	customerService := service.NewCustomerService(customerClient, prescriptionClient, logger)
	dashboardService := service.NewDashboardService(reportingClient, dashboardCache, logger)
	catalogService := service.NewCatalogService(catalogClient, inventoryClient, logger)

	healthHandler.RegisterNonCritical("sales-breaker", func(context.Context) error {
		if salesBreaker.State() == gobreaker.StateOpen {
			return errors.New("sales circuit breaker is open")
		}
		return nil
	})

	// HTTP router.
	router := handler.NewRouter(
		sessions,
		handler.NewSessionHandler(sessions, cartService, checkoutService, customerService, cfg.CashierName, logger),
		handler.NewCustomerHandler(customerService, logger),
		handler.NewCatalogHandler(catalogService, logger),
		handler.NewReportHandler(dashboardService, checkoutService, logger),
		healthHandler,
		logger,
		handler.RouterConfig{
			CORS: middleware.CORSConfig{
				AllowedOrigins: cfg.CORSAllowedOrigins,
				MaxAge:         3600,
			},
			RateLimitRPS:    cfg.RateLimitRPS,
			RateLimitBurst:  cfg.RateLimitBurst,
			RequireAuth:     cfg.RequireAuthToken,
			DashboardMaxAge: cfg.DashboardCacheTTL,
		},
	)

	// The write timeout leaves room for a slow sale submission.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      time.Duration(cfg.SalesTimeout)*time.Second + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		sessions:       sessions,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the session sweeper and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.sessions.Run(gctx, memory.DefaultSweepInterval)
		return nil
	})

	g.Go(func() error {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.logger.Info("shutdown signal received")
		}
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer, Redis client.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Drain in-flight requests, including a pending sale submission.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.SalesTimeout)*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete", slog.Int("open_sessions", a.sessions.Len()))
	return errors.Join(errs...)
}
