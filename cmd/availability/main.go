package main

import (
	"io"

	"hostavail/internal/availability/events"
	"hostavail/internal/availability/handler"
	"hostavail/internal/availability/metrics"
	"hostavail/internal/availability/provider"
	"hostavail/internal/availability/repository"
	"hostavail/internal/availability/service"
	"hostavail/internal/availability/validator"
	"hostavail/pkg/app"
	"hostavail/pkg/config"
	"hostavail/pkg/kafka"
	kafka_config "hostavail/pkg/kafka/config"
	kafka_middleware "hostavail/pkg/kafka/middleware"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Availability service")
	m := metrics.New()

	publisher, closers := initPublisher(cfg, m)
	checkService := initServices(cfg, m, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(
		cfg,
		handler.NewHealthHandler(cfg.Client, m.Handler(), cfg.Log),
		handler.NewAvailabilityHandler(checkService, cfg.Log),
		m,
		closers...,
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, m *metrics.Metrics, publisher events.DecisionPublisher) service.CheckService {
	availabilityValidator := validator.NewAvailabilityValidator(cfg.Log)

	eventTypeRepo := repository.NewMongoEventTypeRepository(cfg)
	if cfg.Client.Redis != nil {
		eventTypeRepo = repository.NewCachedEventTypeRepository(eventTypeRepo, cfg.Client.Redis, cfg.EventTypeCacheTTL, cfg.Log, m)
	}

	dataProvider := provider.New(
		repository.NewMongoBookingRepository(cfg),
		repository.NewMongoScheduleRepository(cfg),
		repository.NewMongoOutOfOfficeRepository(cfg),
		availabilityValidator,
		cfg.AvailabilityFetchConcurrency,
		cfg.Log,
	)

	availabilityService := service.NewAvailabilityService(dataProvider, dataProvider, dataProvider, cfg.Log)
	checkService := service.NewCheckService(
		availabilityService,
		provider.NewEventTypeSource(eventTypeRepo, availabilityValidator, cfg.Log),
		availabilityValidator,
		publisher,
		m,
		cfg,
	)

	cfg.Log.Info("Availability service initialized",
		"database", cfg.MongoDatabaseName,
		"event_type_cache", cfg.Client.Redis != nil,
		"fetch_concurrency", cfg.AvailabilityFetchConcurrency,
	)
	return checkService
}

// initPublisher returns the decision publisher and the resources the server
// must close on shutdown.
func initPublisher(cfg *config.Config, m *metrics.Metrics) (events.DecisionPublisher, []io.Closer) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, decisions will not be published")
		return events.NewNopPublisher(), nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaDecisionsTopic, cfg.KafkaDecisionsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(kafka_middleware.NewMetrics(m.Registry())))
	}

	return events.NewKafkaDecisionPublisher(producer, ServiceName, cfg.Log), []io.Closer{producer}
}
