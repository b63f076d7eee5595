package submatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/natefinch/atomic"
)

// GraphStats is a struct that holds a graph and provides methods for
// analyzing it: a thin wrapper with a handful of read-only summary methods
// rather than a standalone function per metric.
type GraphStats struct {
	Graph *AdjacencyGraph
}

// NodeCount returns the number of nodes in the graph.
func (a *GraphStats) NodeCount() int {
	return a.Graph.Len()
}

// DegreeDistribution returns, for every node, its out-degree (neighbour
// count), keyed by node id.
func (a *GraphStats) DegreeDistribution() map[NodeID]int {
	out := make(map[NodeID]int, a.Graph.Len())
	for _, n := range a.Graph.Nodes() {
		out[n] = len(a.Graph.Neighbors(n))
	}
	return out
}

// MeanDegree returns the average out-degree across every node, or 0 for an
// empty graph.
func (a *GraphStats) MeanDegree() float64 {
	nodes := a.Graph.Nodes()
	if len(nodes) == 0 {
		return 0
	}
	var sum int
	for _, n := range nodes {
		sum += len(a.Graph.Neighbors(n))
	}
	return float64(sum) / float64(len(nodes))
}

// CandidateStats summarizes a candidate set's shape ahead of a search: how
// many candidate targets each query node carries, which bounds how wide the
// assignment search's branching factor will be.
type CandidateStats struct {
	Candidates *CandidateSet
}

// PerQueryCounts returns, for every query node with at least one candidate,
// the number of candidate targets it has.
func (c *CandidateStats) PerQueryCounts() map[NodeID]int {
	out := make(map[NodeID]int)
	for _, u := range c.Candidates.QueryNodes() {
		out[u] = len(c.Candidates.TargetsFor(u))
	}
	return out
}

// MaxFanOut returns the largest per-query candidate count, or 0 if the
// candidate set is empty.
func (c *CandidateStats) MaxFanOut() int {
	max := 0
	for _, n := range c.PerQueryCounts() {
		if n > max {
			max = n
		}
	}
	return max
}

// searchSnapshot is the diagnostic record persisted by SaveSearchSnapshot:
// a point-in-time summary of a search's inputs and the best result found,
// useful for comparing runs across parameter changes without replaying the
// whole pipeline.
type searchSnapshot struct {
	QueryNodes     int     `json:"query_nodes"`
	TargetNodes    int     `json:"target_nodes"`
	CandidateCount int     `json:"candidate_count"`
	MaxFanOut      int     `json:"max_fan_out"`
	BestCost       float64 `json:"best_cost"`
	ResultCount    int     `json:"result_count"`
}

// SaveSearchSnapshot writes a small JSON diagnostic summary of a completed
// search to path, atomically: the file either holds the previous snapshot
// or the new one in full, never a partial write, since a monitoring process
// may be reading it concurrently.
func SaveSearchSnapshot(path string, q, t *AdjacencyGraph, candidates *CandidateSet, results []Result) error {
	snap := searchSnapshot{
		QueryNodes:     q.Len(),
		TargetNodes:    t.Len(),
		CandidateCount: candidates.Len(),
		MaxFanOut:      (&CandidateStats{Candidates: candidates}).MaxFanOut(),
		ResultCount:    len(results),
	}
	if len(results) > 0 {
		best := results[0]
		for _, r := range results[1:] {
			if r.Cost < best.Cost {
				best = r
			}
		}
		snap.BestCost = best.Cost
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
