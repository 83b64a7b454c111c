package main

import (
	bookingshandler "servicelink/internal/bookings/handler"
	bookingsrepo "servicelink/internal/bookings/repository"
	bookingsservice "servicelink/internal/bookings/service"
	bookingsvalidator "servicelink/internal/bookings/validator"
	"servicelink/internal/events"
	serviceshandler "servicelink/internal/services/handler"
	servicesrepo "servicelink/internal/services/repository"
	servicesservice "servicelink/internal/services/service"
	servicesvalidator "servicelink/internal/services/validator"
	usersrepo "servicelink/internal/users/repository"
	"servicelink/pkg/app"
	"servicelink/pkg/auth"
	"servicelink/pkg/config"
	"servicelink/pkg/kafka"
	kafka_config "servicelink/pkg/kafka/config"
	kafka_middleware "servicelink/pkg/kafka/middleware"
)

const ServiceName = "servicelink-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting ServiceLink API")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	authMiddleware := auth.NewMiddleware(auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTokenTTL), cfg.Log)

	serviceRepo := servicesrepo.NewMongoServiceRepository(cfg)
	catalog := servicesservice.NewServiceCatalog(
		serviceRepo,
		servicesvalidator.NewServiceValidator(cfg.Log),
		cfg,
	)
	lifecycle := bookingsservice.NewBookingLifecycle(
		bookingsrepo.NewMongoBookingRepository(cfg),
		serviceRepo,
		usersrepo.NewMongoUserRepository(cfg),
		publisher,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		serviceshandler.NewServiceHandler(catalog, authMiddleware, cfg.Log),
		bookingshandler.NewBookingHandler(lifecycle, authMiddleware, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher returns a Kafka-backed publisher when Kafka is enabled and
// a logging one otherwise.
func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events are logged only")
		return events.NewLogPublisher(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	serverApp.OnShutdown(producer)

	return events.NewKafkaPublisher(producer, ServiceName)
}
