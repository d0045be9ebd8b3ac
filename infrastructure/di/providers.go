package di

import (
	"context"
	"fmt"
	"os"
	"strings"

	"canvaschat/application/ports"
	"canvaschat/application/queries"
	querybus "canvaschat/application/queries/bus"
	"canvaschat/application/services"
	domainconfig "canvaschat/domain/config"
	domainservices "canvaschat/domain/services"
	"canvaschat/infrastructure/config"
	"canvaschat/infrastructure/observability"
	"canvaschat/infrastructure/persistence/decorators"
	"canvaschat/infrastructure/persistence/dynamodb"
	"canvaschat/infrastructure/persistence/memory"
	"canvaschat/infrastructure/persistence/relational"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StoreBackend is a concrete chat store before any decoration.
// The CLI seeds and migrates through it.
type StoreBackend interface {
	ports.ChatStore
	ports.ChatSeeder
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	// stdout carries command output
	zapCfg.OutputPaths = []string{"stderr"}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = logger.Sync()
	}
	return logger, cleanup, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Store.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client, pointed at
// DYNAMODB_ENDPOINT when one is configured (DynamoDB Local)
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.Store.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Store.DynamoDBEndpoint)
		}
	})
}

// ProvideStoreBackend opens the store selected by STORE_DRIVER
func ProvideStoreBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (StoreBackend, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memory.NewInMemoryChatStore(), func() {}, nil

	case config.DriverSQLite, config.DriverPostgres:
		db, err := relational.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Store.Driver == config.DriverSQLite {
			// sqlite databases are local files, so the schema is created on demand
			if err := relational.Migrate(ctx, db); err != nil {
				return nil, nil, err
			}
		}
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return relational.NewChatStore(db, logger), cleanup, nil

	case config.DriverDynamoDB:
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := ProvideDynamoDBClient(awsCfg, cfg)
		return dynamodb.NewChatStore(client, cfg.Store.DynamoDBTable, logger), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// ProvideCollector creates the metrics collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	// metric names only allow [a-zA-Z0-9_]
	namespace := strings.NewReplacer("-", "_", ".", "_").Replace(cfg.Observability.ServiceName)
	return observability.NewCollector(namespace)
}

// ProvideContextMetrics returns the collector when metrics are enabled
func ProvideContextMetrics(cfg *config.Config, collector *observability.Collector) ports.ContextMetrics {
	if !cfg.Observability.EnableMetrics {
		return ports.NoopContextMetrics{}
	}
	return collector
}

// ProvideTracerProvider initializes tracing
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingOptions{
		Enabled:      cfg.Observability.EnableTracing,
		ServiceName:  cfg.Observability.ServiceName,
		Environment:  cfg.Environment,
		Exporter:     cfg.Observability.TracingExporter,
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
		Writer:       os.Stderr,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down tracing", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideChatStore decorates the backend with the circuit breaker and tracing
func ProvideChatStore(
	backend StoreBackend,
	cfg *config.Config,
	collector *observability.Collector,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) ports.ChatStore {
	var store ports.ChatStore = backend

	if cfg.Breaker.Enabled {
		store = decorators.NewCircuitBreakerStore(store, decorators.CircuitBreakerConfig{
			Name:             "chat-store-" + cfg.Store.Driver,
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureRatio,
			MinRequests:      cfg.Breaker.MinRequests,
			OnStateChange:    collector.RecordBreakerState,
		}, logger)
	}

	if cfg.Observability.EnableTracing {
		store = decorators.TraceStore(store, tp.Tracer())
	}

	return store
}

// ProvideDomainConfig extracts the domain limits
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

// ProvideChainService creates the chain service
func ProvideChainService(domainCfg *domainconfig.DomainConfig) *domainservices.ChainService {
	return domainservices.NewChainService(domainCfg)
}

// ProvideContextService creates the context service
func ProvideContextService(
	store ports.ChatStore,
	chains *domainservices.ChainService,
	metrics ports.ContextMetrics,
	logger *zap.Logger,
) *services.ContextService {
	return services.NewContextService(store, chains, metrics, logger)
}

// ProvideQueryBus creates the query bus with all handlers registered
func ProvideQueryBus(
	cfg *config.Config,
	contexts *services.ContextService,
	collector *observability.Collector,
) (*querybus.QueryBus, error) {
	var middleware []querybus.Middleware
	if cfg.Observability.EnableMetrics {
		middleware = append(middleware, querybus.NewMetricsMiddleware(collector))
	}

	b := querybus.NewQueryBus(middleware...)
	if err := queries.RegisterHandlers(b, contexts); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return b, nil
}
