package submatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAdjacencyGraph(t *testing.T) {
	g, err := NewAdjacencyGraph(map[NodeID][]NodeID{
		1: {2, 3},
		2: {1, 4},
		3: {1},
		4: {2},
	})
	require.NoError(t, err)
	require.Equal(t, 4, g.Len())
	require.ElementsMatch(t, []NodeID{2, 3}, g.Neighbors(1))
}

func TestNewAdjacencyGraph_SelfLoop(t *testing.T) {
	_, err := NewAdjacencyGraph(map[NodeID][]NodeID{
		1: {1},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestAdjacencyGraph_NeighborsOfUnknownNode(t *testing.T) {
	g, err := NewAdjacencyGraph(map[NodeID][]NodeID{1: {2}, 2: {1}})
	require.NoError(t, err)
	require.Nil(t, g.Neighbors(99))
}

type stubGraphProvider struct {
	adjacency map[int64]map[NodeID][]NodeID
}

func (s stubGraphProvider) Nodes(ctx context.Context, graphID int64) ([]NodeID, error) {
	adj, ok := s.adjacency[graphID]
	if !ok {
		return nil, ErrNoSuchGraph
	}
	out := make([]NodeID, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	return out, nil
}

func (s stubGraphProvider) Adjacency(ctx context.Context, graphID int64) (map[NodeID][]NodeID, error) {
	adj, ok := s.adjacency[graphID]
	if !ok {
		return nil, ErrNoSuchGraph
	}
	return adj, nil
}

func TestLoadGraph(t *testing.T) {
	p := stubGraphProvider{adjacency: map[int64]map[NodeID][]NodeID{
		1: {1: {2}, 2: {1}},
	}}

	g, err := LoadGraph(context.Background(), p, 1)
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())
}

func TestLoadGraph_NoSuchGraph(t *testing.T) {
	p := stubGraphProvider{adjacency: map[int64]map[NodeID][]NodeID{}}

	_, err := LoadGraph(context.Background(), p, 42)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNoSuchGraph))
}

func TestLoadGraph_CancelledContext(t *testing.T) {
	p := stubGraphProvider{adjacency: map[int64]map[NodeID][]NodeID{1: {1: nil}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadGraph(ctx, p, 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCancelled))
}
