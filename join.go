package submatch

import (
	"context"
	"fmt"
	"sort"
)

// JoinRecord is one row produced by the join stage, matching the fixed
// 10-field schema: match_start, match_end, query_node_id, target_node_id,
// query_proximity, target_proximity, delta, misses, totals, weight. delta,
// misses, and totals are scratch fields, initially 0, later rewritten by the
// Frame and the optimizer.
type JoinRecord struct {
	MatchStart      NodeID
	MatchEnd        NodeID
	QueryNodeID     NodeID
	TargetNodeID    Option[NodeID]
	QueryProximity  int
	TargetProximity Option[int]
	Delta           float64
	Misses          int
	Totals          int
	Weight          float64
}

// Join computes the full, unpaginated join output for a candidate set: for
// every candidate (u,v), for every query neighbour u' of u within h hops,
// emit a record per candidate target of u' within h hops of v, or exactly
// one miss record if u' has none.
func Join(ctx context.Context, q, t *AdjacencyGraph, candidates *CandidateSet, h int) ([]JoinRecord, error) {
	if h < 0 {
		return nil, fmt.Errorf("%w: h must be >= 0, got %d", ErrInvalidArgument, h)
	}

	queryNeighbours, err := queryNeighbourhoods(ctx, q, candidates, h)
	if err != nil {
		return nil, err
	}
	targetNeighbours, err := targetNeighbourhoods(ctx, t, candidates, h)
	if err != nil {
		return nil, err
	}

	var out []JoinRecord
	for _, c := range candidates.All() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		for _, qn := range queryNeighbours[c.U] {
			targetsOfUPrime := candidates.TargetsFor(qn.Node)
			matched := false
			for _, tgt := range targetsOfUPrime {
				d, withinH := targetNeighbours[c.V][tgt.V]
				if !withinH {
					continue
				}
				matched = true
				out = append(out, JoinRecord{
					MatchStart:      c.U,
					MatchEnd:        c.V,
					QueryNodeID:     qn.Node,
					TargetNodeID:    Some(tgt.V),
					QueryProximity:  qn.Distance,
					TargetProximity: Some(d),
					Weight:          c.Weight,
				})
			}
			if !matched {
				out = append(out, JoinRecord{
					MatchStart:      c.U,
					MatchEnd:        c.V,
					QueryNodeID:     qn.Node,
					TargetNodeID:    None[NodeID](),
					QueryProximity:  qn.Distance,
					TargetProximity: None[int](),
					Weight:          c.Weight,
				})
			}
		}
	}
	return out, nil
}

// JoinPaginated returns the [lo, hi) window of the canonically ordered join
// output. offsets must have exactly two elements with 0 <= lo <= hi; any
// other shape is ErrInvalidArgument. A window that runs past the end of the
// output is cut off there, and one that starts at or past the end is empty.
// Paginating and concatenating all windows reproduces the full unpaginated
// output as a multiset, since both simply slice the same canonical ordering
// (candidates in set order, each candidate's query neighbours by node id).
func JoinPaginated(ctx context.Context, q, t *AdjacencyGraph, candidates *CandidateSet, h int, offsets []int) ([]JoinRecord, error) {
	if len(offsets) != 2 {
		return nil, fmt.Errorf("%w: offsets must have exactly 2 elements, got %d", ErrInvalidArgument, len(offsets))
	}
	lo, hi := offsets[0], offsets[1]
	if lo < 0 || hi < lo {
		return nil, fmt.Errorf("%w: invalid pagination window [%d, %d)", ErrInvalidArgument, lo, hi)
	}

	full, err := Join(ctx, q, t, candidates, h)
	if err != nil {
		return nil, err
	}
	if lo >= len(full) {
		return nil, nil
	}
	if hi > len(full) {
		hi = len(full)
	}
	return full[lo:hi], nil
}

// queryNeighbourhoods expands every distinct query node that seeds a
// candidate, once, and groups the result by seed node, each group sorted by
// neighbour node id so the join's row order is the same on every call.
func queryNeighbourhoods(ctx context.Context, q *AdjacencyGraph, candidates *CandidateSet, h int) (map[NodeID][]NeighbourTriple, error) {
	seeds := candidates.QueryNodes()
	triples, err := ExpandFrom(ctx, q, seeds, h)
	if err != nil {
		return nil, err
	}
	out := make(map[NodeID][]NeighbourTriple)
	for _, tr := range triples {
		out[tr.Seed] = append(out[tr.Seed], tr)
	}
	for _, group := range out {
		sort.Slice(group, func(i, j int) bool { return group[i].Node < group[j].Node })
	}
	return out, nil
}

// targetNeighbourhoods expands every distinct target node that is the image
// of a candidate, once, and indexes the result by seed node then by
// neighbour-distance map for O(1) lookup during the join.
func targetNeighbourhoods(ctx context.Context, t *AdjacencyGraph, candidates *CandidateSet, h int) (map[NodeID]map[NodeID]int, error) {
	seen := make(map[NodeID]bool)
	var seeds []NodeID
	for _, c := range candidates.All() {
		if !seen[c.V] {
			seen[c.V] = true
			seeds = append(seeds, c.V)
		}
	}
	triples, err := ExpandFrom(ctx, t, seeds, h)
	if err != nil {
		return nil, err
	}
	out := make(map[NodeID]map[NodeID]int)
	for _, tr := range triples {
		if out[tr.Seed] == nil {
			out[tr.Seed] = make(map[NodeID]int)
		}
		out[tr.Seed][tr.Node] = tr.Distance
	}
	return out, nil
}
