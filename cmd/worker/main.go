package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	opshttp "github.com/wms-platform/exception-service/internal/api/http"
	"github.com/wms-platform/exception-service/internal/application"
	"github.com/wms-platform/exception-service/internal/domain"
	consolidationclient "github.com/wms-platform/exception-service/internal/infrastructure/consolidation"
	"github.com/wms-platform/exception-service/internal/infrastructure/kafka"
	"github.com/wms-platform/exception-service/internal/infrastructure/mongodb"
	wmsclient "github.com/wms-platform/exception-service/internal/infrastructure/wms"
	"github.com/wms-platform/exception-service/pkg/logging"
	"github.com/wms-platform/exception-service/pkg/metrics"
	"github.com/wms-platform/exception-service/pkg/tracing"
)

const serviceName = "exception-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)

	logger.Info("Starting Exception Service")

	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnvBool("TRACING_ENABLED", true)

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing - don't exit
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	mongoClient, err := mongodb.Connect(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	orderRepo := mongodb.NewOrderRepository(mongoClient.Database(config.MongoDB.Database))

	wms := wmsclient.NewClient(config.WMS, logger.WithComponent("wms-client").Logger)
	consolidation := consolidationclient.NewClient(config.Consolidation, logger.WithComponent("consolidation-client").Logger)
	logger.Info("Collaborator clients initialized", "wms", config.WMS.BaseURL, "consolidation", config.Consolidation.BaseURL)

	queue := kafka.NewQueue(config.Kafka, logger.WithComponent("completion-queue").Logger)
	defer queue.Close()
	logger.Info("Pick-completion queue initialized", "topic", config.Kafka.Topic, "brokers", config.Kafka.Brokers)

	service := application.NewExceptionService(
		orderRepo,
		wms,
		consolidation,
		queue,
		config.Exceptions,
		config.Pools,
		logger,
		m,
	)

	scheduler := application.NewScheduler(service, config.Scheduler, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start scheduler")
		os.Exit(1)
	}
	defer scheduler.Stop()
	logger.Info("Scheduler started",
		"sweepInterval", config.Scheduler.SweepInterval,
		"completionInterval", config.Scheduler.CompletionInterval)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handlers := opshttp.NewHandlers(service, scheduler, orderRepo, logger)
	opshttp.SetupRoutes(router, handlers, m, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return mongoClient.Ping(pingCtx, nil)
	})

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Exception Service stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr    string
	MongoDB       *mongodb.Config
	Kafka         *kafka.Config
	WMS           *wmsclient.Config
	Consolidation *consolidationclient.Config
	Exceptions    application.ExceptionConfiguration
	Pools         application.PoolConfig
	Scheduler     application.SchedulerConfig
}

func loadConfig() *Config {
	exceptions := application.DefaultExceptionConfiguration()
	exceptions.Enabled = getEnvBool("EXCEPTIONS_ENABLED", exceptions.Enabled)
	exceptions.WarehouseOperational = getEnvBool("WAREHOUSE_OPERATIONAL", exceptions.WarehouseOperational)
	exceptions.SupportedOrderTypes = parseOrderTypes(getEnv("SUPPORTED_ORDER_TYPES", ""))
	exceptions.MaxAutoStraggles = getEnvInt("MAX_AUTO_STRAGGLES", exceptions.MaxAutoStraggles)
	exceptions.AutoStraggleWindow = getEnvDuration("AUTO_STRAGGLE_WINDOW", exceptions.AutoStraggleWindow)
	exceptions.AutoStraggleEnabled = getEnvBool("AUTO_STRAGGLE_ENABLED", exceptions.AutoStraggleEnabled)

	pools := application.DefaultPoolConfig()
	pools.ResolverWorkers = getEnvInt("RESOLVER_WORKERS", pools.ResolverWorkers)
	pools.CompletionWorkers = getEnvInt("COMPLETION_WORKERS", pools.CompletionWorkers)

	scheduler := application.DefaultSchedulerConfig()
	scheduler.SweepInterval = getEnvDuration("SWEEP_INTERVAL", scheduler.SweepInterval)
	scheduler.CompletionInterval = getEnvDuration("COMPLETION_INTERVAL", scheduler.CompletionInterval)

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8017"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "exceptions_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:         getEnv("KAFKA_COMPLETION_TOPIC", "wms.pick-completions"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", serviceName),
			PollTimeout:   getEnvDuration("KAFKA_POLL_TIMEOUT", 2*time.Second),
			MaxSnapshot:   getEnvInt("KAFKA_MAX_SNAPSHOT", 5000),
		},
		WMS: &wmsclient.Config{
			BaseURL: getEnv("WMS_SERVICE_URL", "http://localhost:8080"),
			Timeout: getEnvDuration("WMS_TIMEOUT", 30*time.Second),
		},
		Consolidation: &consolidationclient.Config{
			BaseURL: getEnv("CONSOLIDATION_SERVICE_URL", "http://localhost:8081"),
			Timeout: getEnvDuration("CONSOLIDATION_TIMEOUT", 30*time.Second),
		},
		Exceptions: exceptions,
		Pools:      pools,
		Scheduler:  scheduler,
	}
}

// parseOrderTypes maps a comma-separated list onto known order types,
// falling back to all of them when the list is empty or unrecognized.
func parseOrderTypes(raw string) []domain.Type {
	if raw == "" {
		return domain.OrderTypes()
	}
	var types []domain.Type
	for _, name := range strings.Split(raw, ",") {
		candidate := domain.Type(strings.TrimSpace(name))
		for _, known := range domain.OrderTypes() {
			if candidate == known {
				types = append(types, candidate)
				break
			}
		}
	}
	if len(types) == 0 {
		return domain.OrderTypes()
	}
	return types
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
