package submatch

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/coder/submatch/heap"
)

// Parameters controls both the cost-iteration phase and the assignment
// search. Zero-valued fields are filled in by WithDefaults.
type Parameters struct {
	H           int     // hop radius, >= 1, default 2
	Alpha       float64 // proximity decay base in [0,1], default 0.3
	K           int     // number of best assignments to return, >= 1, default 1
	MaxIters    int     // cost-iteration cap, default 10
	Tol         float64 // cost-iteration convergence threshold, default 1e-6
	MissPenalty float64 // cost of an unmatched neighbour or an all-⊥ assignment slot, default 1.0
}

// WithDefaults fills zero-valued fields with the documented defaults:
// H=2, Alpha=0.3, K=1, MaxIters=10, Tol=1e-6, MissPenalty=1.0.
func (p Parameters) WithDefaults() Parameters {
	if p.H == 0 {
		p.H = 2
	}
	if p.Alpha == 0 {
		p.Alpha = 0.3
	}
	if p.K == 0 {
		p.K = 1
	}
	if p.MaxIters == 0 {
		p.MaxIters = 10
	}
	if p.Tol == 0 {
		p.Tol = 1e-6
	}
	if p.MissPenalty == 0 {
		p.MissPenalty = 1.0
	}
	return p
}

// Validate checks parameter ranges, returning ErrInvalidArgument on
// violation.
func (p Parameters) Validate() error {
	if p.H < 0 {
		return fmt.Errorf("%w: H must be >= 0, got %d", ErrInvalidArgument, p.H)
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return fmt.Errorf("%w: Alpha must be in [0,1], got %f", ErrInvalidArgument, p.Alpha)
	}
	if p.K <= 0 {
		return fmt.Errorf("%w: K must be >= 1, got %d", ErrInvalidArgument, p.K)
	}
	if p.MissPenalty < 0 {
		return fmt.Errorf("%w: MissPenalty must be >= 0, got %f", ErrInvalidArgument, p.MissPenalty)
	}
	return nil
}

// Pair is one entry of an Assignment: a query node mapped to a target node,
// or to ⊥ if no candidate was assigned.
type Pair struct {
	U NodeID
	V Option[NodeID]
}

// Assignment is a one-to-one partial map V_Q -> V_T ∪ {⊥}, one Pair per
// query node, sorted by query node id.
type Assignment []Pair

// Result pairs an Assignment with its total cost.
type Result struct {
	Assignment Assignment
	Cost       float64
}

type candidateKey struct {
	u, v NodeID
}

// RunSearch is the public entrypoint: it runs the full pipeline (join,
// Frame, cost iteration, branch-and-bound) and returns the k lowest-cost
// one-to-one assignments, sorted by cost ascending and tie-broken
// lexicographically.
func RunSearch(ctx context.Context, q, t *AdjacencyGraph, candidates *CandidateSet, params Parameters) ([]Result, error) {
	results, _, err := RunSearchWithCheckpoint(ctx, q, t, candidates, params, nil)
	return results, err
}

// RunSearchWithCheckpoint runs the same pipeline as RunSearch but also
// accepts a CostMap to seed the cost-iteration phase (instead of starting
// every c(u,v) at 0) and returns the converged CostMap alongside the
// results, so a caller can persist it via SavedCostMap.Save and reuse it
// the next time the same query/target pair is searched with a slightly
// different candidate set. seed may be nil.
func RunSearchWithCheckpoint(ctx context.Context, q, t *AdjacencyGraph, candidates *CandidateSet, params Parameters, seed CostMap) ([]Result, CostMap, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, nil, err
	}

	queryNodes := append([]NodeID(nil), q.Nodes()...)
	sort.Slice(queryNodes, func(i, j int) bool { return queryNodes[i] < queryNodes[j] })

	if candidates.Len() == 0 {
		return allMissResult(queryNodes, params.MissPenalty), nil, nil
	}

	records, err := Join(ctx, q, t, candidates, params.H)
	if err != nil {
		return nil, nil, err
	}
	frame, err := NewFrame(records)
	if err != nil {
		return nil, nil, err
	}

	costs, err := iterateCosts(ctx, frame, candidates, params, seed)
	if err != nil {
		return nil, nil, err
	}

	results, err := searchAssignments(ctx, queryNodes, candidates, costs, params)
	if err != nil {
		return nil, nil, err
	}
	return results, costMapFromCosts(costs), nil
}

// allMissResult is the §4.4 boundary case: an empty candidate set for every
// query node returns a single all-⊥ assignment, at a penalty of
// MissPenalty per query node.
func allMissResult(queryNodes []NodeID, missPenalty float64) []Result {
	assignment := make(Assignment, len(queryNodes))
	for i, u := range queryNodes {
		assignment[i] = Pair{U: u, V: None[NodeID]()}
	}
	return []Result{{Assignment: assignment, Cost: missPenalty * float64(len(queryNodes))}}
}

// iterateCosts runs the message-passing cost refinement to fixpoint or
// MaxIters, per §4.4: c(u,v) is the sum, over u's query neighbours u', of
// the cheapest row for u' — proximity(d_Q) * (delta_plus(d_T,d_Q) +
// c(u',v')) for matched rows, or proximity(d_Q) * MissPenalty for a miss
// row — divided by totals(u), the number of those neighbours.
func iterateCosts(ctx context.Context, frame *Frame, candidates *CandidateSet, params Parameters, seed CostMap) (map[candidateKey]float64, error) {
	costs := make(map[candidateKey]float64, candidates.Len())
	for _, c := range candidates.All() {
		key := candidateKey{c.U, c.V}
		if seed != nil {
			if targets, ok := seed[c.U]; ok {
				if cost, ok := targets[c.V]; ok {
					costs[key] = cost
					continue
				}
			}
		}
		costs[key] = 0
	}
	if frame.Len() == 0 {
		return costs, nil
	}

	matchStart, err := frame.Column("match_start")
	if err != nil {
		return nil, err
	}
	matchEnd, err := frame.Column("match_end")
	if err != nil {
		return nil, err
	}
	queryNodeID, err := frame.Column("query_node_id")
	if err != nil {
		return nil, err
	}
	targetNodeID, err := frame.Column("target_node_id")
	if err != nil {
		return nil, err
	}
	totals, err := frame.Column("totals")
	if err != nil {
		return nil, err
	}
	starts := matchStart.([]NodeID)
	ends := matchEnd.([]NodeID)
	queryIDs := queryNodeID.([]NodeID)
	targetIDs := targetNodeID.([]Option[NodeID])
	totalsCol := totals.([]int)

	// totals(u) is constant across every row of a (u,v) group and the Frame
	// never changes between iterations, so this lookup is built once here
	// rather than rescanned per candidate key on every iteration.
	totalsByKey := make(map[candidateKey]int, len(costs))
	for i := 0; i < frame.Len(); i++ {
		key := candidateKey{starts[i], ends[i]}
		if _, ok := totalsByKey[key]; !ok {
			totalsByKey[key] = totalsCol[i]
		}
	}

	for iter := 0; iter < params.MaxIters; iter++ {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		proximity, err := frame.Proximity(params.H, params.Alpha)
		if err != nil {
			return nil, err
		}
		deltaPlus := frame.DeltaPlusColumn()

		sums := make(map[candidateKey]float64, len(costs))
		// Rows sharing (u, v, u') are contiguous in the Frame's sort order;
		// only the best image of each query neighbour u' contributes.
		for i := 0; i < frame.Len(); {
			key := candidateKey{starts[i], ends[i]}
			best := math.Inf(1)
			j := i
			for ; j < frame.Len() && starts[j] == starts[i] && ends[j] == ends[i] && queryIDs[j] == queryIDs[i]; j++ {
				contribution := proximity[j] * params.MissPenalty
				if v, ok := targetIDs[j].Get(); ok {
					contribution = proximity[j] * (deltaPlus[j] + costs[candidateKey{queryIDs[j], v}])
				}
				best = math.Min(best, contribution)
			}
			sums[key] += best
			i = j
		}

		next := make(map[candidateKey]float64, len(costs))
		maxChange := 0.0
		for key := range costs {
			total := sums[key]
			// A candidate with zero Frame rows (should not happen once
			// joined, but guarded for safety) keeps its prior cost.
			t := totalsByKey[key]
			nc := costs[key]
			if t > 0 {
				nc = total / float64(t)
			}
			next[key] = nc
			if d := math.Abs(nc - costs[key]); d > maxChange {
				maxChange = d
			}
		}
		costs = next
		if maxChange < params.Tol {
			break
		}
	}

	return costs, nil
}

// pruneEps absorbs floating-point noise when comparing a branch's lower
// bound against the current k-th best incumbent cost.
const pruneEps = 1e-9

// option is one branch choice for a query node: assign it to V, or to ⊥
// when V is None.
type option struct {
	v    Option[NodeID]
	cost float64
}

// incumbent is one complete assignment found during the search, ordered by
// cost ascending and tie-broken lexicographically so the heap's Max is
// always the worst of the k kept so far.
type incumbent struct {
	assignment Assignment
	cost       float64
}

func (a incumbent) Less(b incumbent) bool {
	if math.Abs(a.cost-b.cost) > pruneEps {
		return a.cost < b.cost
	}
	for i := range a.assignment {
		av, aok := a.assignment[i].V.Get()
		bv, bok := b.assignment[i].V.Get()
		if aok != bok {
			// ⊥ sorts after any real target: it is the least specific choice.
			return aok
		}
		if aok && av != bv {
			return av < bv
		}
	}
	return false
}

// assignmentEngine runs a depth-first branch-and-bound search for the k
// lowest-cost one-to-one assignments of query nodes to target nodes (or
// ⊥), grounded in the same bbEngine shape used for Hamiltonian-path search
// elsewhere in this module family: a precomputed admissible lower bound,
// most-constrained-first branching order, and a sparse deadline check
// rather than one per node visited.
type assignmentEngine struct {
	ctx context.Context

	order      []NodeID            // query nodes, most-constrained first
	options    map[NodeID][]option // branch choices per query node, cost ascending
	suffixMin  []float64           // suffixMin[i] = sum of min option cost for order[i:]
	usedTarget map[NodeID]bool
	assigned   []Pair // assigned[i] corresponds to order[i], once set

	k     int
	best  heap.Heap[incumbent]
	steps int

	cancelled error
}

func searchAssignments(ctx context.Context, queryNodes []NodeID, candidates *CandidateSet, costs map[candidateKey]float64, params Parameters) ([]Result, error) {
	e := &assignmentEngine{
		ctx:        ctx,
		options:    make(map[NodeID][]option, len(queryNodes)),
		usedTarget: make(map[NodeID]bool),
		assigned:   make([]Pair, len(queryNodes)),
		k:          params.K,
	}
	e.best.Init(make([]incumbent, 0, params.K))

	e.order = append([]NodeID(nil), queryNodes...)
	for _, u := range e.order {
		opts := []option{{v: None[NodeID](), cost: params.MissPenalty}}
		for _, c := range candidates.TargetsFor(u) {
			opts = append(opts, option{v: Some(c.V), cost: costs[candidateKey{u, c.V}]})
		}
		sort.Slice(opts, func(i, j int) bool {
			if opts[i].cost != opts[j].cost {
				return opts[i].cost < opts[j].cost
			}
			av, aok := opts[i].v.Get()
			bv, bok := opts[j].v.Get()
			if aok != bok {
				return aok
			}
			return aok && av < bv
		})
		e.options[u] = opts
	}

	sort.Slice(e.order, func(i, j int) bool {
		return len(e.options[e.order[i]]) < len(e.options[e.order[j]])
	})

	e.suffixMin = make([]float64, len(e.order)+1)
	for i := len(e.order) - 1; i >= 0; i-- {
		e.suffixMin[i] = e.suffixMin[i+1] + e.options[e.order[i]][0].cost
	}

	if err := e.dfs(0, 0); err != nil {
		return nil, err
	}
	if e.cancelled != nil {
		return nil, e.cancelled
	}

	results := make([]Result, len(e.best.Slice()))
	for i, inc := range e.best.Slice() {
		results[i] = Result{Assignment: inc.assignment, Cost: inc.cost}
	}
	sort.Slice(results, func(i, j int) bool {
		a := incumbent{assignment: results[i].Assignment, cost: results[i].Cost}
		b := incumbent{assignment: results[j].Assignment, cost: results[j].Cost}
		return a.Less(b)
	})
	return results, nil
}

// worstKept returns the cost of the current k-th best incumbent, or +Inf
// while fewer than k have been found — a branch cannot yet be pruned on
// incumbent quality alone.
func (e *assignmentEngine) worstKept() float64 {
	if e.best.Len() < e.k {
		return math.Inf(1)
	}
	return e.best.Max().cost
}

func (e *assignmentEngine) deadlineCheck() error {
	e.steps++
	if e.steps&1023 != 0 {
		return nil
	}
	return checkContext(e.ctx)
}

func (e *assignmentEngine) dfs(depth int, costSoFar float64) error {
	if err := e.deadlineCheck(); err != nil {
		e.cancelled = err
		return err
	}

	// Only prune when the bound truly exceeds the k-th best: a bound that
	// ties it must still be explored, since the completion reached from
	// here may be the lexicographically smaller assignment that belongs
	// among the kept k, not the one already sitting in the heap.
	if lb := costSoFar + e.suffixMin[depth]; lb > e.worstKept()+pruneEps {
		return nil
	}

	if depth == len(e.order) {
		e.commit(costSoFar)
		return nil
	}

	u := e.order[depth]
	for _, opt := range e.options[u] {
		if v, ok := opt.v.Get(); ok {
			if e.usedTarget[v] {
				continue
			}
			e.usedTarget[v] = true
		}
		e.assigned[depth] = Pair{U: u, V: opt.v}

		if err := e.dfs(depth+1, costSoFar+opt.cost); err != nil {
			if v, ok := opt.v.Get(); ok {
				e.usedTarget[v] = false
			}
			return err
		}

		if v, ok := opt.v.Get(); ok {
			e.usedTarget[v] = false
		}
	}
	return nil
}

// commit records a completed assignment as a new incumbent if it belongs
// among the k best found so far. Among costs tied within pruneEps, the
// lexicographically smaller assignment wins, via incumbent.Less — never a
// raw cost comparison, which would keep whichever tied assignment the
// branching order happened to reach first.
func (e *assignmentEngine) commit(cost float64) {
	assignment := make(Assignment, len(e.assigned))
	copy(assignment, e.assigned)
	sort.Slice(assignment, func(i, j int) bool { return assignment[i].U < assignment[j].U })
	cand := incumbent{assignment: assignment, cost: cost}

	if e.best.Len() < e.k {
		e.best.Push(cand)
		return
	}
	if !cand.Less(e.best.Max()) {
		return
	}
	e.best.PopLast()
	e.best.Push(cand)
}
