package services

import (
	"context"

	"cortex-backend/application/ports"
	"cortex-backend/domain/config"
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/valueobjects"
	"cortex-backend/domain/events"
	pkgerrors "cortex-backend/pkg/errors"
	"cortex-backend/pkg/observability"

	"go.uber.org/zap"
)

// Feedback reports how a delivered context pack performed so the
// graph can shift confidence toward the neurons that helped.
type Feedback struct {
	ContextPackID    string   `json:"contextPackId" validate:"required"`
	Success          bool     `json:"success"`
	Score            int      `json:"score" validate:"min=0,max=100"`
	ReinforceNeurons []string `json:"reinforceNeurons,omitempty"`
	WeakenNeurons    []string `json:"weakenNeurons,omitempty"`
}

// FeedbackResult summarizes what a feedback application actually did.
type FeedbackResult struct {
	Reinforced     int      `json:"reinforced"`
	Weakened       int      `json:"weakened"`
	UnknownNeurons []string `json:"unknownNeurons,omitempty"`
}

// FeedbackService applies confidence adjustments from pack feedback.
// Adjustments run inside a single Mutate call so concurrent feedback
// on the same graph serializes instead of clobbering.
type FeedbackService struct {
	graphRepo ports.GraphRepository
	eventBus  ports.EventPublisher
	cfg       *config.DomainConfig
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewFeedbackService creates the feedback service
func NewFeedbackService(
	graphRepo ports.GraphRepository,
	eventBus ports.EventPublisher,
	cfg *config.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *FeedbackService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &FeedbackService{
		graphRepo: graphRepo,
		eventBus:  eventBus,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// Apply nudges confidence for the named neurons. Unknown neuron ids
// are reported back rather than failing the whole batch; they are the
// normal case when feedback arrives after a neuron was deleted.
func (s *FeedbackService) Apply(ctx context.Context, graphID aggregates.GraphID, fb Feedback) (*FeedbackResult, error) {
	result := &FeedbackResult{UnknownNeurons: []string{}}
	adjusted := make([]events.DomainEvent, 0, len(fb.ReinforceNeurons)+len(fb.WeakenNeurons))

	adjust := func(g *aggregates.Graph, rawID string, delta int) bool {
		neuronID, err := valueobjects.NewNeuronIDFromString(rawID)
		if err != nil {
			return false
		}
		newConfidence, ok := g.AdjustConfidence(neuronID, delta)
		if !ok {
			return false
		}
		adjusted = append(adjusted, events.NewConfidenceAdjusted(
			graphID.String(), rawID, delta, newConfidence, fb.ContextPackID,
		))
		return true
	}

	err := s.graphRepo.Mutate(ctx, graphID, func(g *aggregates.Graph) error {
		for _, id := range fb.ReinforceNeurons {
			if adjust(g, id, s.cfg.FeedbackDelta) {
				result.Reinforced++
			} else {
				result.UnknownNeurons = append(result.UnknownNeurons, id)
			}
		}
		for _, id := range fb.WeakenNeurons {
			if adjust(g, id, -s.cfg.FeedbackDelta) {
				result.Weakened++
			} else {
				result.UnknownNeurons = append(result.UnknownNeurons, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to apply feedback")
	}

	if len(result.UnknownNeurons) > 0 {
		s.logger.Warn("Feedback referenced unknown neurons",
			zap.String("graphID", graphID.String()),
			zap.String("contextPackId", fb.ContextPackID),
			zap.Strings("neuronIds", result.UnknownNeurons),
		)
	}

	if s.eventBus != nil && len(adjusted) > 0 {
		if err := s.eventBus.PublishBatch(ctx, adjusted); err != nil {
			s.logger.Warn("Failed to publish confidence events",
				zap.String("graphID", graphID.String()),
				zap.Error(err),
			)
		}
	}

	s.metrics.ObserveFeedback(result.Reinforced, result.Weakened, len(result.UnknownNeurons))
	return result, nil
}
