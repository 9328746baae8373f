package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

const (
	workspaceIndexName = "WorkspaceIndex"
	batchWriteLimit    = 25
)

// GraphRepository persists graphs in a single DynamoDB table.
// Layout: PK=GRAPH#<id>, SK=META | NEURON#<id> | SYNAPSE#<id>.
// META rows carry GSI attributes for workspace-level listing.
type GraphRepository struct {
	client    *dynamodb.Client
	tableName string
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewGraphRepository creates a DynamoDB-backed graph repository
func NewGraphRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *GraphRepository {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dynamodb-graphs",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &GraphRepository{
		client:    client,
		tableName: tableName,
		breaker:   breaker,
		logger:    logger,
	}
}

// graphMetaRecord is the META row of a graph partition
type graphMetaRecord struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	GraphID     string `dynamodbav:"GraphID"`
	WorkspaceID string `dynamodbav:"WorkspaceID"`
	Name        string `dynamodbav:"Name"`
	Version     int    `dynamodbav:"Version"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
}

// neuronRecord flattens a neuron and its payload into one row
type neuronRecord struct {
	PK           string   `dynamodbav:"PK"`
	SK           string   `dynamodbav:"SK"`
	EntityType   string   `dynamodbav:"EntityType"`
	NeuronID     string   `dynamodbav:"NeuronID"`
	Type         string   `dynamodbav:"Type"`
	Statement    string   `dynamodbav:"Statement"`
	Why          string   `dynamodbav:"Why,omitempty"`
	Scope        string   `dynamodbav:"Scope"`
	Status       string   `dynamodbav:"Status"`
	Confidence   int      `dynamodbav:"Confidence"`
	Importance   int      `dynamodbav:"Importance"`
	Tags         []string `dynamodbav:"Tags,omitempty"`
	ProjectID    string   `dynamodbav:"ProjectID,omitempty"`
	RoleID       string   `dynamodbav:"RoleID,omitempty"`
	Enforcement  string   `dynamodbav:"Enforcement,omitempty"`
	Category     string   `dynamodbav:"Category,omitempty"`
	Alternatives []string `dynamodbav:"Alternatives,omitempty"`
	Tradeoffs    string   `dynamodbav:"Tradeoffs,omitempty"`
	Steps        []string `dynamodbav:"Steps,omitempty"`
	Trigger      string   `dynamodbav:"Trigger,omitempty"`
	Summary      string   `dynamodbav:"Summary,omitempty"`
	Source       string   `dynamodbav:"Source,omitempty"`
	CreatedAt    string   `dynamodbav:"CreatedAt"`
	UpdatedAt    string   `dynamodbav:"UpdatedAt"`
}

// evidenceRecord mirrors entities.EvidenceRef
type evidenceRecord struct {
	Source string `dynamodbav:"Source"`
	Quote  string `dynamodbav:"Quote,omitempty"`
}

// synapseRecord flattens a synapse into one row
type synapseRecord struct {
	PK            string           `dynamodbav:"PK"`
	SK            string           `dynamodbav:"SK"`
	EntityType    string           `dynamodbav:"EntityType"`
	SynapseID     string           `dynamodbav:"SynapseID"`
	SourceID      string           `dynamodbav:"SourceID"`
	TargetID      string           `dynamodbav:"TargetID"`
	Type          string           `dynamodbav:"Type"`
	Weight        float64          `dynamodbav:"Weight"`
	Bidirectional bool             `dynamodbav:"Bidirectional"`
	Evidence      []evidenceRecord `dynamodbav:"Evidence,omitempty"`
	CreatedAt     string           `dynamodbav:"CreatedAt"`
}

// Save persists the graph as a full partition upsert.
func (r *GraphRepository) Save(ctx context.Context, graph *aggregates.Graph) error {
	if graph == nil {
		return pkgerrors.NewValidationError("graph cannot be nil")
	}

	items := make([]map[string]types.AttributeValue, 0, 1+len(graph.Neurons())+len(graph.Synapses()))

	meta, err := attributevalue.MarshalMap(r.toMetaRecord(graph))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal graph meta")
	}
	items = append(items, meta)

	graphKey := graphPK(graph.ID().String())
	for _, n := range graph.Neurons() {
		item, err := attributevalue.MarshalMap(toNeuronRecord(graphKey, n))
		if err != nil {
			return pkgerrors.Wrap(err, "failed to marshal neuron")
		}
		items = append(items, item)
	}
	for _, s := range graph.Synapses() {
		item, err := attributevalue.MarshalMap(toSynapseRecord(graphKey, s))
		if err != nil {
			return pkgerrors.Wrap(err, "failed to marshal synapse")
		}
		items = append(items, item)
	}

	return r.batchWrite(ctx, items)
}

// GetByID loads the full graph partition and reconstructs the aggregate.
func (r *GraphRepository) GetByID(ctx context.Context, id aggregates.GraphID) (*aggregates.Graph, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(graphPK(id.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build query expression")
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to query graph partition")
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	if len(items) == 0 {
		return nil, pkgerrors.NewNotFoundError("graph")
	}
	return r.reconstruct(items)
}

// GetByWorkspace lists graphs for a workspace via the GSI, then loads
// each one.
func (r *GraphRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*aggregates.Graph, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(workspacePK(workspaceID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build query expression")
	}

	out, err := r.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(workspaceIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query workspace index")
	}

	graphs := make([]*aggregates.Graph, 0, len(out.Items))
	for _, item := range out.Items {
		var meta graphMetaRecord
		if err := attributevalue.UnmarshalMap(item, &meta); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to unmarshal graph meta")
		}
		graph, err := r.GetByID(ctx, aggregates.GraphID(meta.GraphID))
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, graph)
	}
	return graphs, nil
}

// Mutate loads the graph, applies fn, and writes the result back.
// DynamoDB gives no cross-item transaction over a whole partition, so
// concurrent writers to the same graph should be serialized upstream.
func (r *GraphRepository) Mutate(ctx context.Context, id aggregates.GraphID, fn func(*aggregates.Graph) error) error {
	graph, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(graph); err != nil {
		return err
	}
	return r.Save(ctx, graph)
}

// Delete removes all rows of the graph partition.
func (r *GraphRepository) Delete(ctx context.Context, id aggregates.GraphID) error {
	keyCond := expression.Key("PK").Equal(expression.Value(graphPK(id.String())))
	proj := expression.NamesList(expression.Name("PK"), expression.Name("SK"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithProjection(proj).Build()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build query expression")
	}

	out, err := r.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ProjectionExpression:      expr.Projection(),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "failed to query graph partition")
	}
	if len(out.Items) == 0 {
		return pkgerrors.NewNotFoundError("graph")
	}

	requests := make([]types.WriteRequest, 0, len(out.Items))
	for _, item := range out.Items {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": item["PK"],
					"SK": item["SK"],
				},
			},
		})
	}
	return r.batchWriteRequests(ctx, requests)
}

func (r *GraphRepository) query(ctx context.Context, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	result, err := r.breaker.Execute(func() (any, error) {
		return r.client.Query(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	return result.(*dynamodb.QueryOutput), nil
}

func (r *GraphRepository) batchWrite(ctx context.Context, items []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}
	return r.batchWriteRequests(ctx, requests)
}

func (r *GraphRepository) batchWriteRequests(ctx context.Context, requests []types.WriteRequest) error {
	for start := 0; start < len(requests); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(requests) {
			end = len(requests)
		}

		batch := requests[start:end]
		_, err := r.breaker.Execute(func() (any, error) {
			return nil, r.writeBatchWithRetry(ctx, batch)
		})
		if err != nil {
			return pkgerrors.Wrap(err, "failed to write batch")
		}
	}
	return nil
}

// writeBatchWithRetry resubmits unprocessed items, which DynamoDB
// returns under throttling
func (r *GraphRepository) writeBatchWithRetry(ctx context.Context, batch []types.WriteRequest) error {
	pending := batch
	for attempt := 0; len(pending) > 0 && attempt < 3; attempt++ {
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.tableName: pending,
			},
		})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems[r.tableName]
		if len(pending) > 0 {
			time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
		}
	}
	if len(pending) > 0 {
		return fmt.Errorf("%d items unprocessed after retries", len(pending))
	}
	return nil
}

func (r *GraphRepository) toMetaRecord(graph *aggregates.Graph) graphMetaRecord {
	id := graph.ID().String()
	return graphMetaRecord{
		PK:          graphPK(id),
		SK:          "META",
		EntityType:  "GRAPH",
		GraphID:     id,
		WorkspaceID: graph.WorkspaceID(),
		Name:        graph.Name(),
		Version:     graph.Version(),
		CreatedAt:   graph.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:   graph.UpdatedAt().Format(time.RFC3339Nano),
		GSI1PK:      workspacePK(graph.WorkspaceID()),
		GSI1SK:      graphPK(id),
	}
}

func toNeuronRecord(pk string, n *entities.Neuron) neuronRecord {
	rec := neuronRecord{
		PK:         pk,
		SK:         "NEURON#" + n.ID().String(),
		EntityType: "NEURON",
		NeuronID:   n.ID().String(),
		Type:       n.Type().String(),
		Statement:  n.Statement(),
		Why:        n.Why(),
		Scope:      string(n.Scope()),
		Status:     string(n.Status()),
		Confidence: n.Confidence(),
		Importance: n.Importance(),
		Tags:       n.Tags(),
		ProjectID:  n.ProjectID(),
		RoleID:     n.RoleID(),
		CreatedAt:  n.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  n.UpdatedAt().Format(time.RFC3339Nano),
	}

	switch p := n.Payload().(type) {
	case entities.RulePayload:
		rec.Enforcement = string(p.Enforcement)
	case entities.IdentityPayload:
		rec.Category = string(p.Category)
	case entities.DecisionPayload:
		rec.Alternatives = p.Alternatives
		rec.Tradeoffs = p.Tradeoffs
	case entities.PlaybookPayload:
		rec.Steps = p.Steps
		rec.Trigger = p.Trigger
	case entities.DocPayload:
		rec.Summary = p.Summary
		rec.Source = p.Source
	}
	return rec
}

func toSynapseRecord(pk string, s *entities.Synapse) synapseRecord {
	evidence := make([]evidenceRecord, 0, len(s.Evidence()))
	for _, e := range s.Evidence() {
		evidence = append(evidence, evidenceRecord{Source: e.Source, Quote: e.Quote})
	}
	return synapseRecord{
		PK:            pk,
		SK:            "SYNAPSE#" + s.ID().String(),
		EntityType:    "SYNAPSE",
		SynapseID:     s.ID().String(),
		SourceID:      s.Source().String(),
		TargetID:      s.Target().String(),
		Type:          s.Type().String(),
		Weight:        s.Weight(),
		Bidirectional: s.Bidirectional(),
		Evidence:      evidence,
		CreatedAt:     s.CreatedAt().Format(time.RFC3339Nano),
	}
}

// reconstruct rebuilds the aggregate from partition rows. Neurons load
// before synapses so endpoint validation can pass.
func (r *GraphRepository) reconstruct(items []map[string]types.AttributeValue) (*aggregates.Graph, error) {
	var graph *aggregates.Graph
	var neuronItems, synapseItems []map[string]types.AttributeValue

	for _, item := range items {
		sk := ""
		if v, ok := item["SK"].(*types.AttributeValueMemberS); ok {
			sk = v.Value
		}
		switch {
		case sk == "META":
			var meta graphMetaRecord
			if err := attributevalue.UnmarshalMap(item, &meta); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to unmarshal graph meta")
			}
			createdAt, _ := time.Parse(time.RFC3339Nano, meta.CreatedAt)
			updatedAt, _ := time.Parse(time.RFC3339Nano, meta.UpdatedAt)
			g, err := aggregates.ReconstructGraph(meta.GraphID, meta.WorkspaceID, meta.Name, meta.Version, createdAt, updatedAt)
			if err != nil {
				return nil, err
			}
			graph = g
		case strings.HasPrefix(sk, "NEURON#"):
			neuronItems = append(neuronItems, item)
		case strings.HasPrefix(sk, "SYNAPSE#"):
			synapseItems = append(synapseItems, item)
		}
	}
	if graph == nil {
		return nil, pkgerrors.NewNotFoundError("graph")
	}

	for _, item := range neuronItems {
		neuron, err := parseNeuron(item)
		if err != nil {
			return nil, err
		}
		if err := graph.LoadNeuron(neuron); err != nil {
			return nil, err
		}
	}
	for _, item := range synapseItems {
		synapse, err := parseSynapse(item)
		if err != nil {
			return nil, err
		}
		if err := graph.LoadSynapse(synapse); err != nil {
			return nil, err
		}
	}
	return graph, nil
}

func parseNeuron(item map[string]types.AttributeValue) (*entities.Neuron, error) {
	var rec neuronRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal neuron")
	}

	id, err := valueobjects.NewNeuronIDFromString(rec.NeuronID)
	if err != nil {
		return nil, err
	}

	neuronType := entities.NeuronType(rec.Type)
	var payload entities.Payload
	switch neuronType {
	case entities.TypeRule:
		if rec.Enforcement != "" {
			payload = entities.RulePayload{Enforcement: entities.Enforcement(rec.Enforcement)}
		}
	case entities.TypeIdentity:
		if rec.Category != "" {
			payload = entities.IdentityPayload{Category: entities.IdentityCategory(rec.Category)}
		}
	case entities.TypeDecision:
		if len(rec.Alternatives) > 0 || rec.Tradeoffs != "" {
			payload = entities.DecisionPayload{Alternatives: rec.Alternatives, Tradeoffs: rec.Tradeoffs}
		}
	case entities.TypePlaybook:
		if len(rec.Steps) > 0 || rec.Trigger != "" {
			payload = entities.PlaybookPayload{Steps: rec.Steps, Trigger: rec.Trigger}
		}
	case entities.TypeDoc:
		if rec.Summary != "" || rec.Source != "" {
			payload = entities.DocPayload{Summary: rec.Summary, Source: rec.Source}
		}
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, rec.UpdatedAt)

	return entities.ReconstructNeuron(
		id,
		neuronType,
		rec.Statement,
		rec.Why,
		entities.Scope(rec.Scope),
		entities.NeuronStatus(rec.Status),
		rec.Confidence,
		rec.Importance,
		rec.Tags,
		rec.ProjectID,
		rec.RoleID,
		payload,
		createdAt, updatedAt,
	)
}

func parseSynapse(item map[string]types.AttributeValue) (*entities.Synapse, error) {
	var rec synapseRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal synapse")
	}

	id, err := valueobjects.NewSynapseIDFromString(rec.SynapseID)
	if err != nil {
		return nil, err
	}
	source, err := valueobjects.NewNeuronIDFromString(rec.SourceID)
	if err != nil {
		return nil, err
	}
	target, err := valueobjects.NewNeuronIDFromString(rec.TargetID)
	if err != nil {
		return nil, err
	}

	evidence := make([]entities.EvidenceRef, 0, len(rec.Evidence))
	for _, e := range rec.Evidence {
		evidence = append(evidence, entities.EvidenceRef{Source: e.Source, Quote: e.Quote})
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, rec.CreatedAt)

	return entities.ReconstructSynapse(
		id,
		source, target,
		entities.SynapseType(rec.Type),
		rec.Weight,
		rec.Bidirectional,
		evidence,
		createdAt,
	)
}

func graphPK(id string) string {
	return "GRAPH#" + id
}

func workspacePK(workspaceID string) string {
	return "WORKSPACE#" + workspaceID
}
