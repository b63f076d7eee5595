package submatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func toyGraphs(t *testing.T) (query, target *AdjacencyGraph) {
	t.Helper()
	q, err := NewAdjacencyGraph(map[NodeID][]NodeID{1: {2}, 2: {1}})
	require.NoError(t, err)
	tg, err := NewAdjacencyGraph(map[NodeID][]NodeID{10: {20}, 20: {10}})
	require.NoError(t, err)
	return q, tg
}

func TestJoin_BothNeighboursMatch(t *testing.T) {
	query, target := toyGraphs(t)
	candidates := NewCandidateSet([]Candidate{
		{U: 1, V: 10, Weight: 1},
		{U: 2, V: 20, Weight: 1},
	})

	records, err := Join(context.Background(), query, target, candidates, 1)
	require.NoError(t, err)
	require.Len(t, records, 4)

	for _, r := range records {
		v, ok := r.TargetNodeID.Get()
		require.True(t, ok, "expected every row to match")
		dist, ok := r.TargetProximity.Get()
		require.True(t, ok)
		require.Equal(t, r.QueryProximity, dist)
		_ = v
	}
}

func TestJoin_MissWhenNeighbourHasNoCandidates(t *testing.T) {
	query, target := toyGraphs(t)
	candidates := NewCandidateSet([]Candidate{
		{U: 1, V: 10, Weight: 1},
	})

	records, err := Join(context.Background(), query, target, candidates, 1)
	require.NoError(t, err)

	var misses, matches int
	for _, r := range records {
		if _, ok := r.TargetNodeID.Get(); ok {
			matches++
		} else {
			misses++
			require.False(t, r.TargetProximity.IsSome())
		}
	}
	require.Equal(t, 1, matches)
	require.Equal(t, 1, misses)
}

func TestJoin_ZeroHopsYieldsOneRowPerCandidate(t *testing.T) {
	query := figureFourQueryGraph(t)
	target := figureFourTargetGraph(t)
	candidates := figureFourCandidates()

	records, err := Join(context.Background(), query, target, candidates, 0)
	require.NoError(t, err)
	require.Len(t, records, candidates.Len())

	for _, r := range records {
		require.Equal(t, r.MatchStart, r.QueryNodeID)
		v, ok := r.TargetNodeID.Get()
		require.True(t, ok)
		require.Equal(t, r.MatchEnd, v)
		require.Equal(t, 0, r.QueryProximity)
	}
}

func TestJoin_NegativeHopsIsInvalidArgument(t *testing.T) {
	query, target := toyGraphs(t)
	candidates := NewCandidateSet(nil)

	_, err := Join(context.Background(), query, target, candidates, -1)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestJoinPaginated(t *testing.T) {
	query, target := toyGraphs(t)
	candidates := NewCandidateSet([]Candidate{
		{U: 1, V: 10, Weight: 1},
		{U: 2, V: 20, Weight: 1},
	})

	full, err := Join(context.Background(), query, target, candidates, 1)
	require.NoError(t, err)

	page, err := JoinPaginated(context.Background(), query, target, candidates, 1, []int{1, 3})
	require.NoError(t, err)
	require.Equal(t, full[1:3], page)

	_, err = JoinPaginated(context.Background(), query, target, candidates, 1, []int{0})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func figureFourQueryGraph(t *testing.T) *AdjacencyGraph {
	t.Helper()
	edges := [][2]NodeID{{1, 2}, {1, 3}, {2, 4}, {4, 5}}
	adj := make(map[NodeID][]NodeID)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	g, err := NewAdjacencyGraph(adj)
	require.NoError(t, err)
	return g
}

func figureFourCandidates() *CandidateSet {
	pairs := map[NodeID][]NodeID{
		1: {1, 4, 8},
		2: {2, 5, 9},
		3: {3, 6, 12, 13},
		4: {7, 10},
		5: {11},
	}
	var candidates []Candidate
	for u, targets := range pairs {
		for _, v := range targets {
			candidates = append(candidates, Candidate{U: u, V: v, Weight: 1})
		}
	}
	return NewCandidateSet(candidates)
}
