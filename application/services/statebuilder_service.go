package services

import (
	"context"
	"time"

	"cortex-backend/application/ports"
	"cortex-backend/domain/config"
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/events"
	domainservices "cortex-backend/domain/services"
	pkgerrors "cortex-backend/pkg/errors"
	"cortex-backend/pkg/observability"

	"go.uber.org/zap"
)

// BuildOptions tunes one context pack build. Zero values fall back to
// domain defaults; a nil Weights uses the currently configured vector.
type BuildOptions struct {
	MaxNeurons        int
	MinRelevanceScore *float64
	IncludeTypes      []entities.NeuronType
	ExcludeTypes      []entities.NeuronType
	Weights           *domainservices.Weights
}

// StateBuilderService runs the read pipeline: collect, rank, resolve,
// package. It works on graph snapshots and performs no graph writes.
type StateBuilderService struct {
	graphRepo ports.GraphRepository
	packRepo  ports.ContextPackRepository
	eventBus  ports.EventPublisher
	weights   ports.WeightsProvider
	collector *domainservices.CandidateCollector
	resolver  *domainservices.ConflictResolver
	packager  *domainservices.ContextPackager
	cfg       *config.DomainConfig
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewStateBuilderService creates the state builder service
func NewStateBuilderService(
	graphRepo ports.GraphRepository,
	packRepo ports.ContextPackRepository,
	eventBus ports.EventPublisher,
	weights ports.WeightsProvider,
	cfg *config.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *StateBuilderService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &StateBuilderService{
		graphRepo: graphRepo,
		packRepo:  packRepo,
		eventBus:  eventBus,
		weights:   weights,
		collector: domainservices.NewCandidateCollector(cfg),
		resolver:  domainservices.NewConflictResolver(),
		packager:  domainservices.NewContextPackager(cfg),
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// BuildContextPack assembles a bounded, conflict-free working-memory
// snapshot for the query. An empty or fully filtered graph is not an
// error; the result is simply an empty pack with the fallback mission.
func (s *StateBuilderService) BuildContextPack(
	ctx context.Context,
	graphID aggregates.GraphID,
	query domainservices.StateQuery,
	opts *BuildOptions,
) (*domainservices.ContextPack, error) {
	start := time.Now()
	if opts == nil {
		opts = &BuildOptions{}
	}

	graph, err := s.graphRepo.GetByID(ctx, graphID)
	if err != nil {
		s.metrics.ObserveBuild(time.Since(start), 0, err)
		return nil, pkgerrors.Wrap(err, "failed to load graph")
	}

	candidates := s.collector.Collect(graph, query, domainservices.CollectorOptions{
		IncludeTypes: opts.IncludeTypes,
		ExcludeTypes: opts.ExcludeTypes,
	})

	// Cap before ranking so a very large graph cannot blow up the
	// O(N log N) sort; the collector emits core types first, which is
	// exactly the content a truncated set should keep.
	if len(candidates) > s.cfg.CandidateCap {
		candidates = candidates[:s.cfg.CandidateCap]
	}

	ranker := domainservices.NewRelevanceRanker(s.resolveWeights(opts))
	ranked := ranker.Rank(candidates, query)

	resolved, resolutions, excluded := s.resolver.Resolve(graph, ranked)

	pack := s.packager.PackageWithOptions(graph, query, resolved, resolutions, excluded, domainservices.PackagerOptions{
		MaxNeurons:        s.resolveMaxNeurons(opts),
		MinRelevanceScore: s.resolveMinScore(opts),
	})

	if s.packRepo != nil {
		if err := s.packRepo.Save(ctx, pack); err != nil {
			s.logger.Warn("Failed to retain context pack",
				zap.String("packID", pack.ID),
				zap.Error(err),
			)
		}
	}

	s.publish(ctx, events.NewContextPackBuilt(
		pack.ID,
		graphID.String(),
		pack.TotalNeurons,
		len(pack.ConflictResolutions),
		len(pack.ExcludedNeurons),
	))

	s.metrics.ObserveBuild(time.Since(start), len(candidates), nil)
	s.logger.Debug("Built context pack",
		zap.String("graphID", graphID.String()),
		zap.String("packID", pack.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("totalNeurons", pack.TotalNeurons),
		zap.Int("conflicts", len(pack.ConflictResolutions)),
	)

	return pack, nil
}

// GetContextPack retrieves a previously built pack
func (s *StateBuilderService) GetContextPack(ctx context.Context, packID string) (*domainservices.ContextPack, error) {
	if s.packRepo == nil {
		return nil, pkgerrors.NewNotFoundError("context pack")
	}
	return s.packRepo.GetByID(ctx, packID)
}

func (s *StateBuilderService) resolveWeights(opts *BuildOptions) domainservices.Weights {
	if opts.Weights != nil {
		return *opts.Weights
	}
	if s.weights != nil {
		return s.weights.Current()
	}
	return domainservices.DefaultWeights()
}

func (s *StateBuilderService) resolveMaxNeurons(opts *BuildOptions) int {
	if opts.MaxNeurons > 0 {
		return opts.MaxNeurons
	}
	return s.cfg.DefaultMaxNeurons
}

func (s *StateBuilderService) resolveMinScore(opts *BuildOptions) float64 {
	if opts.MinRelevanceScore != nil {
		return *opts.MinRelevanceScore
	}
	return s.cfg.DefaultMinRelevanceScore
}

// publish sends an event best effort; a broker outage must not fail
// a build that already succeeded
func (s *StateBuilderService) publish(ctx context.Context, event events.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
