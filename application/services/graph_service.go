package services

import (
	"context"

	"cortex-backend/application/ports"
	"cortex-backend/domain/config"
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"

	"go.uber.org/zap"
)

// CreateNeuronInput carries the authoring fields for a new neuron.
// Optional fields keep the zero value when omitted so entity defaults
// apply.
type CreateNeuronInput struct {
	Type       entities.NeuronType
	Statement  string
	Why        string
	Scope      entities.Scope
	Status     entities.NeuronStatus
	Confidence *int
	Importance *int
	Tags       []string
	ProjectID  string
	RoleID     string
	Payload    entities.Payload
}

// CreateSynapseInput carries the authoring fields for a new synapse.
type CreateSynapseInput struct {
	SourceID valueobjects.NeuronID
	TargetID valueobjects.NeuronID
	Type     entities.SynapseType
	Weight   float64
	Evidence []entities.EvidenceRef
}

// GraphService handles graph authoring: creating graphs and adding
// neurons and synapses to them.
type GraphService struct {
	graphRepo ports.GraphRepository
	eventBus  ports.EventPublisher
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewGraphService creates the graph service
func NewGraphService(
	graphRepo ports.GraphRepository,
	eventBus ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *GraphService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GraphService{
		graphRepo: graphRepo,
		eventBus:  eventBus,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateGraph creates and persists an empty graph for a workspace.
func (s *GraphService) CreateGraph(ctx context.Context, workspaceID, name string) (*aggregates.Graph, error) {
	if name == "" {
		name = s.cfg.DefaultGraphName
	}
	graph, err := aggregates.NewGraphWithConfig(workspaceID, name, s.cfg)
	if err != nil {
		return nil, err
	}
	if err := s.graphRepo.Save(ctx, graph); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save graph")
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishBatch(ctx, graph.GetUncommittedEvents()); err != nil {
			s.logger.Warn("Failed to publish graph events",
				zap.String("graphID", graph.ID().String()),
				zap.Error(err),
			)
		}
	}
	graph.MarkEventsAsCommitted()

	s.logger.Info("Created graph",
		zap.String("graphID", graph.ID().String()),
		zap.String("workspaceID", workspaceID),
	)
	return graph, nil
}

// GetGraph returns a snapshot of the graph.
func (s *GraphService) GetGraph(ctx context.Context, graphID aggregates.GraphID) (*aggregates.Graph, error) {
	return s.graphRepo.GetByID(ctx, graphID)
}

// AddNeuron creates a neuron inside the graph and returns its id.
func (s *GraphService) AddNeuron(ctx context.Context, graphID aggregates.GraphID, input CreateNeuronInput) (valueobjects.NeuronID, error) {
	var neuronID valueobjects.NeuronID
	err := s.graphRepo.Mutate(ctx, graphID, func(g *aggregates.Graph) error {
		neuron, err := entities.NewNeuron(input.Type, input.Statement, input.Scope)
		if err != nil {
			return err
		}
		neuron.SetWhy(input.Why)
		if input.Confidence != nil {
			neuron.SetConfidence(*input.Confidence)
		}
		if input.Importance != nil {
			neuron.SetImportance(*input.Importance)
		}
		for _, tag := range input.Tags {
			if err := neuron.AddTag(tag); err != nil {
				return err
			}
		}
		if input.ProjectID != "" {
			if err := neuron.AttachToProject(input.ProjectID); err != nil {
				return err
			}
		}
		if input.RoleID != "" {
			if err := neuron.AttachToRole(input.RoleID); err != nil {
				return err
			}
		}
		if input.Payload != nil {
			if err := neuron.SetPayload(input.Payload); err != nil {
				return err
			}
		}
		if input.Status == entities.StatusActive {
			neuron.Activate()
		}
		if err := g.AddNeuron(neuron); err != nil {
			return err
		}
		neuronID = neuron.ID()
		return nil
	})
	if err != nil {
		return valueobjects.NeuronID{}, err
	}
	return neuronID, nil
}

// AddSynapse links two existing neurons and returns the synapse id.
func (s *GraphService) AddSynapse(ctx context.Context, graphID aggregates.GraphID, input CreateSynapseInput) (valueobjects.SynapseID, error) {
	var synapseID valueobjects.SynapseID
	err := s.graphRepo.Mutate(ctx, graphID, func(g *aggregates.Graph) error {
		synapse, err := entities.NewSynapse(input.SourceID, input.TargetID, input.Type, input.Weight)
		if err != nil {
			return err
		}
		for _, ev := range input.Evidence {
			synapse.AddEvidence(ev)
		}
		if err := g.AddSynapse(synapse); err != nil {
			return err
		}
		synapseID = synapse.ID()
		return nil
	})
	if err != nil {
		return valueobjects.SynapseID{}, err
	}
	return synapseID, nil
}
