package submatch

import (
	"context"
)

// Candidate is a single hypothesis pairing one query node with one target
// node, carrying a prior confidence weight in (0,1]. Candidates are
// externally supplied; the core never invents them.
type Candidate struct {
	U      NodeID
	V      NodeID
	Weight float64
}

// CandidateProvider is the external collaborator that owns candidate-match
// storage.
type CandidateProvider interface {
	// Candidates yields every (u, v, weight) triple for a (query graph,
	// target graph) pair. Returns ErrNoSuchGraph, unchanged, if either
	// graph id does not exist.
	Candidates(ctx context.Context, queryGraphID, targetGraphID int64) ([]Candidate, error)
}

// CandidateSet indexes a flat candidate list for the lookups the join stage
// and optimizer need: "what are u's candidate targets" and "is (u,v) a
// candidate, and at what weight".
type CandidateSet struct {
	all     []Candidate
	byQuery map[NodeID][]Candidate
	weight  map[[2]NodeID]float64
}

// NewCandidateSet indexes a flat candidate list.
func NewCandidateSet(candidates []Candidate) *CandidateSet {
	cs := &CandidateSet{
		all:     candidates,
		byQuery: make(map[NodeID][]Candidate),
		weight:  make(map[[2]NodeID]float64, len(candidates)),
	}
	for _, c := range candidates {
		cs.byQuery[c.U] = append(cs.byQuery[c.U], c)
		cs.weight[[2]NodeID{c.U, c.V}] = c.Weight
	}
	return cs
}

// QueryNodes returns every distinct query node that has at least one
// candidate.
func (cs *CandidateSet) QueryNodes() []NodeID {
	out := make([]NodeID, 0, len(cs.byQuery))
	for u := range cs.byQuery {
		out = append(out, u)
	}
	return out
}

// TargetsFor returns the candidate targets (with weight) for a query node,
// or nil if it has none.
func (cs *CandidateSet) TargetsFor(u NodeID) []Candidate {
	return cs.byQuery[u]
}

// Weight returns the weight of the (u, v) candidate, and whether it exists.
func (cs *CandidateSet) Weight(u, v NodeID) (float64, bool) {
	w, ok := cs.weight[[2]NodeID{u, v}]
	return w, ok
}

// All returns every candidate in the set, in its original order.
func (cs *CandidateSet) All() []Candidate {
	return cs.all
}

// Len returns the number of candidates in the set.
func (cs *CandidateSet) Len() int {
	return len(cs.all)
}

// LoadCandidates fetches and indexes a provider's candidate set for a
// (query graph, target graph) pair. Errors from the provider, including
// ErrNoSuchGraph, are returned unchanged.
func LoadCandidates(ctx context.Context, p CandidateProvider, queryGraphID, targetGraphID int64) (*CandidateSet, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	candidates, err := p.Candidates(ctx, queryGraphID, targetGraphID)
	if err != nil {
		return nil, err
	}
	return NewCandidateSet(candidates), nil
}
