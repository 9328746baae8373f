package di

import (
	"context"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cortex-backend/application/ports"
	appservices "cortex-backend/application/services"
	domainconfig "cortex-backend/domain/config"
	domainservices "cortex-backend/domain/services"
	"cortex-backend/infrastructure/config"
	"cortex-backend/infrastructure/messaging"
	"cortex-backend/infrastructure/messaging/eventbridge"
	"cortex-backend/infrastructure/persistence"
	dynamostore "cortex-backend/infrastructure/persistence/dynamodb"
	memorystore "cortex-backend/infrastructure/persistence/memory"
	"cortex-backend/interfaces/http/rest"
	"cortex-backend/interfaces/http/rest/handlers"
	"cortex-backend/pkg/observability"
)

// ProvideLogger builds the application logger from configuration
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = logger.Sync() }
	return logger, cleanup, nil
}

// ProvideDomainConfig maps the environment configuration onto domain
// tunables
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	dc := domainconfig.DefaultDomainConfig()
	dc.TraversalDepth = cfg.StateBuilder.TraversalDepth
	dc.CandidateCap = cfg.StateBuilder.CandidateCap
	dc.DefaultMaxNeurons = cfg.StateBuilder.MaxNeurons
	dc.DefaultMinRelevanceScore = cfg.StateBuilder.MinRelevanceScore
	return dc
}

// ProvideRegistry creates the Prometheus registry
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates metrics collectors when enabled
func ProvideMetrics(cfg *config.Config, registry *prometheus.Registry) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics(registry)
}

// ProvideTracerProvider initializes tracing when enabled
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "cortex-backend",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TraceSampleRate,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to shut down tracer provider", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideGraphRepository selects the graph store by persistence driver
func ProvideGraphRepository(ctx context.Context, cfg *config.Config, tracer *observability.TracerProvider, logger *zap.Logger) (ports.GraphRepository, error) {
	var repo ports.GraphRepository
	if cfg.PersistenceDriver == "dynamodb" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, err
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		repo = dynamostore.NewGraphRepository(client, cfg.DynamoDBTable, logger)
	} else {
		repo = memorystore.NewGraphStore()
	}

	if tracer != nil {
		repo = persistence.TraceGraphRepository(repo, tracer.Tracer())
	}
	return repo, nil
}

// ProvidePackRepository creates the context pack store
func ProvidePackRepository(cfg *config.Config) (ports.ContextPackRepository, func()) {
	store := memorystore.NewPackStore(time.Duration(cfg.PackTTLSeconds) * time.Second)
	return store, store.Close
}

// ProvideEventPublisher selects EventBridge when a bus is configured,
// falling back to a logging publisher
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	if cfg.EventBusName == "" || cfg.IsDevelopment() {
		return messaging.NewNoopPublisher(logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}
	client := awseventbridge.NewFromConfig(awsCfg)
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger), nil
}

// ProvideWeightsProvider wires the hot-reloading watcher when a
// weights file is configured
func ProvideWeightsProvider(cfg *config.Config, logger *zap.Logger) (ports.WeightsProvider, func(), error) {
	if cfg.StateBuilder.WeightsFile == "" {
		return config.NewStaticWeights(domainservices.DefaultWeights()), func() {}, nil
	}

	watcher, err := config.NewWeightsWatcher(cfg.StateBuilder.WeightsFile, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.Start()
	return watcher, watcher.Stop, nil
}

// ProvideStateBuilderService creates the build pipeline service
func ProvideStateBuilderService(
	graphRepo ports.GraphRepository,
	packRepo ports.ContextPackRepository,
	eventBus ports.EventPublisher,
	weights ports.WeightsProvider,
	dc *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *appservices.StateBuilderService {
	return appservices.NewStateBuilderService(graphRepo, packRepo, eventBus, weights, dc, metrics, logger)
}

// ProvideFeedbackService creates the feedback service
func ProvideFeedbackService(
	graphRepo ports.GraphRepository,
	eventBus ports.EventPublisher,
	dc *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *appservices.FeedbackService {
	return appservices.NewFeedbackService(graphRepo, eventBus, dc, metrics, logger)
}

// ProvideGraphService creates the graph authoring service
func ProvideGraphService(
	graphRepo ports.GraphRepository,
	eventBus ports.EventPublisher,
	dc *domainconfig.DomainConfig,
	logger *zap.Logger,
) *appservices.GraphService {
	return appservices.NewGraphService(graphRepo, eventBus, dc, logger)
}

// ProvideContextHandler creates the context pack HTTP handler
func ProvideContextHandler(stateBuilder *appservices.StateBuilderService, logger *zap.Logger) *handlers.ContextHandler {
	return handlers.NewContextHandler(stateBuilder, logger)
}

// ProvideFeedbackHandler creates the feedback HTTP handler
func ProvideFeedbackHandler(feedback *appservices.FeedbackService, logger *zap.Logger) *handlers.FeedbackHandler {
	return handlers.NewFeedbackHandler(feedback, logger)
}

// ProvideGraphHandler creates the graph HTTP handler
func ProvideGraphHandler(graphs *appservices.GraphService, logger *zap.Logger) *handlers.GraphHandler {
	return handlers.NewGraphHandler(graphs, logger)
}

// ProvideRouter assembles the HTTP handler tree
func ProvideRouter(
	contextHandler *handlers.ContextHandler,
	feedbackHandler *handlers.FeedbackHandler,
	graphHandler *handlers.GraphHandler,
	registry *prometheus.Registry,
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	return rest.NewRouter(
		contextHandler,
		feedbackHandler,
		graphHandler,
		registry,
		logger,
		cfg.EnableCORS,
		cfg.EnableMetrics,
	).Setup()
}
