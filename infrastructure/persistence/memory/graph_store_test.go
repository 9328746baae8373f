package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/services"
	pkgerrors "cortex-backend/pkg/errors"
)

func storeWithGraph(t *testing.T) (*GraphStore, *aggregates.Graph) {
	t.Helper()
	store := NewGraphStore()
	graph, err := aggregates.NewGraph("ws-1", "Store Test")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), graph))
	return store, graph
}

func TestGraphStore_GetByID_NotFound(t *testing.T) {
	store := NewGraphStore()

	graph, err := store.GetByID(context.Background(), aggregates.GraphID("missing"))

	assert.Nil(t, graph)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraphStore_GetByID_ReturnsSnapshot(t *testing.T) {
	store, graph := storeWithGraph(t)
	ctx := context.Background()

	neuron, err := entities.NewNeuron(entities.TypeInsight, "snapshot subject", entities.ScopeGlobal)
	require.NoError(t, err)
	require.NoError(t, store.Mutate(ctx, graph.ID(), func(g *aggregates.Graph) error {
		return g.AddNeuron(neuron)
	}))

	snapshot, err := store.GetByID(ctx, graph.ID())
	require.NoError(t, err)

	require.NoError(t, store.Mutate(ctx, graph.ID(), func(g *aggregates.Graph) error {
		g.AdjustConfidence(neuron.ID(), 30)
		return nil
	}))

	fromSnapshot, err := snapshot.GetNeuron(neuron.ID())
	require.NoError(t, err)
	assert.Equal(t, 50, fromSnapshot.Confidence(), "snapshot is isolated from later writes")

	live, err := store.GetByID(ctx, graph.ID())
	require.NoError(t, err)
	fromLive, err := live.GetNeuron(neuron.ID())
	require.NoError(t, err)
	assert.Equal(t, 80, fromLive.Confidence())
}

func TestGraphStore_Mutate_NotFound(t *testing.T) {
	store := NewGraphStore()

	err := store.Mutate(context.Background(), aggregates.GraphID("missing"), func(g *aggregates.Graph) error {
		t.Fatal("mutation ran against a missing graph")
		return nil
	})

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraphStore_Mutate_Serializes(t *testing.T) {
	store, graph := storeWithGraph(t)
	ctx := context.Background()

	neuron, err := entities.NewNeuron(entities.TypeInsight, "contended", entities.ScopeGlobal)
	require.NoError(t, err)
	neuron.SetConfidence(0)
	require.NoError(t, store.Mutate(ctx, graph.ID(), func(g *aggregates.Graph) error {
		return g.AddNeuron(neuron)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Mutate(ctx, graph.ID(), func(g *aggregates.Graph) error {
				g.AdjustConfidence(neuron.ID(), 1)
				return nil
			})
		}()
	}
	wg.Wait()

	live, err := store.GetByID(ctx, graph.ID())
	require.NoError(t, err)
	stored, err := live.GetNeuron(neuron.ID())
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Confidence(), "no increment may be lost")
}

func TestGraphStore_GetByWorkspace(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	first, err := aggregates.NewGraph("ws-1", "First")
	require.NoError(t, err)
	second, err := aggregates.NewGraph("ws-1", "Second")
	require.NoError(t, err)
	other, err := aggregates.NewGraph("ws-2", "Other")
	require.NoError(t, err)
	for _, g := range []*aggregates.Graph{first, second, other} {
		require.NoError(t, store.Save(ctx, g))
	}

	graphs, err := store.GetByWorkspace(ctx, "ws-1")
	require.NoError(t, err)
	assert.Len(t, graphs, 2)

	empty, err := store.GetByWorkspace(ctx, "ws-none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGraphStore_Delete(t *testing.T) {
	store, graph := storeWithGraph(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, graph.ID()))

	_, err := store.GetByID(ctx, graph.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsNotFound(store.Delete(ctx, graph.ID())))
}

func TestPackStore_TTLExpiry(t *testing.T) {
	store := NewPackStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	pack := &services.ContextPack{ID: "pack-1", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, pack))

	fetched, err := store.GetByID(ctx, "pack-1")
	require.NoError(t, err)
	assert.Equal(t, "pack-1", fetched.ID)

	time.Sleep(20 * time.Millisecond)

	_, err = store.GetByID(ctx, "pack-1")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPackStore_RejectsPackWithoutID(t *testing.T) {
	store := NewPackStore(time.Minute)
	defer store.Close()

	err := store.Save(context.Background(), &services.ContextPack{})
	assert.True(t, pkgerrors.IsValidation(err))
}
