package submatch

import (
	"context"
	"fmt"
	"sync"
)

// MemoryGraphProvider is an in-memory GraphProvider keyed by graph id: a
// plain map guarded by a mutex, Add/Get semantics rather than anything
// durable.
type MemoryGraphProvider struct {
	mu        sync.RWMutex
	adjacency map[int64]map[NodeID][]NodeID
}

// NewMemoryGraphProvider returns an empty in-memory graph store.
func NewMemoryGraphProvider() *MemoryGraphProvider {
	return &MemoryGraphProvider{adjacency: make(map[int64]map[NodeID][]NodeID)}
}

// AddGraph registers a graph's adjacency under graphID, replacing any
// existing graph with that id.
func (m *MemoryGraphProvider) AddGraph(graphID int64, adjacency map[NodeID][]NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjacency[graphID] = adjacency
}

// DeleteGraph removes a graph, reporting whether it existed.
func (m *MemoryGraphProvider) DeleteGraph(graphID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.adjacency[graphID]
	delete(m.adjacency, graphID)
	return ok
}

func (m *MemoryGraphProvider) Nodes(_ context.Context, graphID int64) ([]NodeID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	adjacency, ok := m.adjacency[graphID]
	if !ok {
		return nil, fmt.Errorf("%w: graph %d", ErrNoSuchGraph, graphID)
	}
	out := make([]NodeID, 0, len(adjacency))
	for n := range adjacency {
		out = append(out, n)
	}
	return out, nil
}

func (m *MemoryGraphProvider) Adjacency(_ context.Context, graphID int64) (map[NodeID][]NodeID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	adjacency, ok := m.adjacency[graphID]
	if !ok {
		return nil, fmt.Errorf("%w: graph %d", ErrNoSuchGraph, graphID)
	}
	out := make(map[NodeID][]NodeID, len(adjacency))
	for n, neighbours := range adjacency {
		out[n] = append([]NodeID(nil), neighbours...)
	}
	return out, nil
}

// graphPairKey identifies a (query graph, target graph) candidate set.
type graphPairKey struct {
	query, target int64
}

// MemoryCandidateProvider is an in-memory CandidateProvider, keyed by
// (query graph id, target graph id) the same way MemoryGraphProvider is
// keyed by a single graph id.
type MemoryCandidateProvider struct {
	mu         sync.RWMutex
	candidates map[graphPairKey][]Candidate
}

// NewMemoryCandidateProvider returns an empty in-memory candidate store.
func NewMemoryCandidateProvider() *MemoryCandidateProvider {
	return &MemoryCandidateProvider{candidates: make(map[graphPairKey][]Candidate)}
}

// AddCandidates registers the candidate set for a (query, target) graph
// pair, replacing any existing set for that pair.
func (m *MemoryCandidateProvider) AddCandidates(queryGraphID, targetGraphID int64, candidates []Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[graphPairKey{queryGraphID, targetGraphID}] = candidates
}

// DeleteCandidates removes a (query, target) candidate set, reporting
// whether it existed.
func (m *MemoryCandidateProvider) DeleteCandidates(queryGraphID, targetGraphID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := graphPairKey{queryGraphID, targetGraphID}
	_, ok := m.candidates[key]
	delete(m.candidates, key)
	return ok
}

func (m *MemoryCandidateProvider) Candidates(_ context.Context, queryGraphID, targetGraphID int64) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	candidates, ok := m.candidates[graphPairKey{queryGraphID, targetGraphID}]
	if !ok {
		return nil, fmt.Errorf("%w: query graph %d, target graph %d", ErrNoSuchGraph, queryGraphID, targetGraphID)
	}
	return append([]Candidate(nil), candidates...), nil
}
