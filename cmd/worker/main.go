package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DioGolang/lifthub/configs"
	"github.com/DioGolang/lifthub/internal/infra/event"
	"github.com/DioGolang/lifthub/internal/infra/storage"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/DioGolang/lifthub/pkg/metrics"
	"github.com/DioGolang/lifthub/pkg/otel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "lifthub-worker"
	handlerName = "student_audit"
	metricsAddr = ":9091"
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
	if config.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required for the worker")
	}
	if config.RedisAddr() == "" {
		return fmt.Errorf("REDIS_HOST is required for the worker")
	}

	log := logger.NewLogger(serviceName, config.IsProduction())

	otel.SetPropagator()
	if config.OTELCollectorAddr != "" {
		shutdown, err := otel.InitProvider(ctx, otel.ProviderConfig{
			ServiceName:   serviceName,
			Version:       "1.0.0",
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

	rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr()})
	defer rdb.Close()

	conn, err := amqp.Dial(config.AMQPURL)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer conn.Close()

	// Outermost first: breaker and timeout, then dedup, then retries.
	audit := event.NewAuditHandler(log, m)
	chain := event.WrapResilientConsumer(m, handlerName, 30*time.Second, storage.NewBreaker(handlerName),
		event.WrapIdempotency(log, storage.NewRedisAdapter(rdb), handlerName, 24*time.Hour,
			event.WrapExponentialBackoff(log, m, handlerName, 3, 200*time.Millisecond, audit.Handle),
		),
	)

	consumer := event.NewConsumer(conn, chain, log)

	metricsSrv := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gCtx, "worker started", logger.String("queue", event.AuditQueue))
		return consumer.Start(gCtx, event.AuditQueue, event.AuditBinding)
	})
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
