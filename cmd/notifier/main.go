package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"servicelink/internal/health"
	"servicelink/internal/notifier"
	usersrepo "servicelink/internal/users/repository"
	"servicelink/pkg/config"
	"servicelink/pkg/kafka"
	kafka_config "servicelink/pkg/kafka/config"
	kafka_middleware "servicelink/pkg/kafka/middleware"
	"servicelink/pkg/metrics"

	"github.com/julienschmidt/httprouter"
)

const ServiceName = "servicelink-notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)
	metrics.Register()

	handler := notifier.NewHandler(
		usersrepo.NewMongoUserRepository(cfg),
		notifier.NewLogEmailSender(cfg.Log),
		cfg.Log,
	)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.BookingEventsTopic, cfg.NotifierGroupID, cfg.BookingEventsDLQ, handler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := opsServer(cfg)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Ops server failed", "error", err)
		}
	}()

	cfg.Log.Info("Notifier started",
		"topic", cfg.BookingEventsTopic,
		"group_id", cfg.NotifierGroupID,
		"dlq_topic", cfg.BookingEventsDLQ,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Shutting down notifier")
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Error("Ops server shutdown failed", "error", err)
	}
}

// opsServer exposes liveness, readiness and metrics for the worker.
func opsServer(cfg *config.Config) *http.Server {
	router := httprouter.New()
	health.NewHealthHandler(map[string]health.Pinger{
		"mongo": health.MongoPinger(cfg.Client.Mongo),
	}, cfg.Log).RegisterRoutes(router)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
