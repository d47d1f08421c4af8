package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DioGolang/lifthub/configs"
	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/internal/application/usecase/student"
	"github.com/DioGolang/lifthub/internal/infra/database"
	"github.com/DioGolang/lifthub/internal/infra/event"
	"github.com/DioGolang/lifthub/internal/infra/storage"
	"github.com/DioGolang/lifthub/internal/infra/web"
	"github.com/DioGolang/lifthub/internal/infra/web/handler"
	mw "github.com/DioGolang/lifthub/internal/infra/web/middleware"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/DioGolang/lifthub/pkg/metrics"
	"github.com/DioGolang/lifthub/pkg/otel"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "lifthub-api"
	version     = "1.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	config, err := configs.LoadConfig(".")
	if err != nil {
		return err
	}

	log := logger.NewLogger(serviceName, config.IsProduction())

	otel.SetPropagator()
	if config.OTELCollectorAddr != "" {
		shutdown, err := otel.InitProvider(ctx, otel.ProviderConfig{
			ServiceName:   serviceName,
			Version:       version,
			Environment:   config.AppEnv,
			CollectorAddr: config.OTELCollectorAddr,
		})
		if err != nil {
			return err
		}
		defer shutdown()
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheusMetrics(reg, serviceName)

	healthOpts := []handler.HealthOption{handler.WithRabbitMQ(config.AMQPURL)}

	var (
		uow    outbound.UnitOfWork
		repo   outbound.StudentRepository
		outbox outbound.OutboxStore
	)
	switch config.DBDriver {
	case "memory":
		store := database.NewMemoryStore()
		uow, repo, outbox = store, store.Repository(), store
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
	case "postgres":
		db, err := openPostgres(ctx, config)
		if err != nil {
			return err
		}
		defer db.Close()
		uow, repo, outbox = database.NewUnitOfWork(db), database.NewStudentRepository(db), database.NewPostgresOutbox(db)
		healthOpts = append(healthOpts, handler.WithPostgres(db))
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", config.DBDriver)
	}

	var cache outbound.StudentCache
	if addr := config.RedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		cache = storage.NewRedisStudentCache(rdb, config.CacheTTL, log, m)
		healthOpts = append(healthOpts, handler.WithRedis(rdb))
	}

	var relay *event.OutboxRelay
	if config.AMQPURL != "" {
		conn, err := amqp.Dial(config.AMQPURL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("open channel: %w", err)
		}
		defer ch.Close()
		if err := event.DeclareExchange(ch); err != nil {
			return fmt.Errorf("declare exchange: %w", err)
		}

		relay = event.NewOutboxRelay(outbox, event.NewDispatcher(ch), log, m, event.DefaultRelayConfig())
		healthOpts = append(healthOpts, handler.WithCheck("outbox-relay", relayConnectionCheck(conn)))
	}

	health, err := handler.NewHealthHandler(serviceName, version, healthOpts...)
	if err != nil {
		return err
	}

	limiter := mw.NewRateLimiter(mw.RateLimiterConfig{
		RequestsPerSecond: config.RateLimitRPS,
		Burst:             config.RateLimitBurst,
	})

	router := web.NewRouter(web.RouterConfig{
		ServiceName:    serviceName,
		UseCases:       student.NewUseCases(uow, repo, cache, m),
		Logger:         log,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HealthHandler:  health,
		RateLimiter:    limiter,
		AllowedOrigins: config.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + config.WebServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		limiter.Run(gCtx)
		return nil
	})

	if relay != nil {
		g.Go(func() error {
			relay.Run(gCtx)
			return nil
		})
		g.Go(func() error {
			relay.RunRescuer(gCtx)
			return nil
		})
	} else {
		log.Warn(ctx, "AMQP_URL not set, outbox events stay unpublished")
	}

	g.Go(func() error {
		log.Info(gCtx, "server running", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info(shutdownCtx, "shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// relayConnectionCheck reports the relay's own broker connection, which can
// drop while fresh dials from the rabbitmq check still succeed.
func relayConnectionCheck(conn *amqp.Connection) func(context.Context) error {
	return func(context.Context) error {
		if conn.IsClosed() {
			return errors.New("relay connection closed")
		}
		return nil
	}
}

func openPostgres(ctx context.Context, config *configs.Conf) (*sql.DB, error) {
	db, err := sql.Open("postgres", config.PostgresDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
