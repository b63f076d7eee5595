package submatch

import (
	"fmt"
	"sort"

	"github.com/viterin/vek/vek32"
)

// Frame is a column-oriented table over JoinRecords. Its schema is closed —
// a fixed record of typed columns, not a dynamic name→column map — per the
// design note that column-name access should be validated against a known
// set rather than allowed to silently miss. Rows are kept in the canonical
// sort order from construction onward.
type Frame struct {
	matchStart      []NodeID
	matchEnd        []NodeID
	queryNodeID     []NodeID
	targetNodeID    []Option[NodeID]
	queryProximity  []int
	targetProximity []Option[int]
	delta           []float64
	misses          []int
	totals          []int
	weight          []float64
}

// frameColumns is the fixed, ordered schema. Column-name lookups are
// validated against exactly this set.
var frameColumns = []string{
	"match_start", "match_end", "query_node_id", "target_node_id",
	"query_proximity", "target_proximity", "delta", "misses", "totals", "weight",
}

// NewFrame builds a Frame from an iterable of JoinRecords: stores each field
// as a dense column, sorts stably by (match_start, match_end, query_node_id,
// delta), then computes the structural "misses" and "totals" scratch
// columns (both are pure functions of the rows themselves, independent of
// any optimizer parameter, so there is no reason to defer them).
func NewFrame(records []JoinRecord) (*Frame, error) {
	f := &Frame{
		matchStart:      make([]NodeID, len(records)),
		matchEnd:        make([]NodeID, len(records)),
		queryNodeID:     make([]NodeID, len(records)),
		targetNodeID:    make([]Option[NodeID], len(records)),
		queryProximity:  make([]int, len(records)),
		targetProximity: make([]Option[int], len(records)),
		delta:           make([]float64, len(records)),
		misses:          make([]int, len(records)),
		totals:          make([]int, len(records)),
		weight:          make([]float64, len(records)),
	}
	for i, r := range records {
		f.matchStart[i] = r.MatchStart
		f.matchEnd[i] = r.MatchEnd
		f.queryNodeID[i] = r.QueryNodeID
		f.targetNodeID[i] = r.TargetNodeID
		f.queryProximity[i] = r.QueryProximity
		f.targetProximity[i] = r.TargetProximity
		f.delta[i] = r.Delta
		f.weight[i] = r.Weight
	}
	f.sort()
	f.computeMisses()
	f.computeTotals()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// validate checks that every column kept in lockstep with the row count
// actually did stay that length after sorting and the derived-column
// passes. A mismatch here means a bug in reorder/computeMisses/
// computeTotals, not bad input, so it is reported as ErrInvariantViolation
// rather than ErrInvalidArgument.
func (f *Frame) validate() error {
	n := f.Len()
	lengths := map[string]int{
		"match_end":        len(f.matchEnd),
		"query_node_id":    len(f.queryNodeID),
		"target_node_id":   len(f.targetNodeID),
		"query_proximity":  len(f.queryProximity),
		"target_proximity": len(f.targetProximity),
		"delta":            len(f.delta),
		"misses":           len(f.misses),
		"totals":           len(f.totals),
		"weight":           len(f.weight),
	}
	for name, length := range lengths {
		if length != n {
			return fmt.Errorf("%w: column %q has %d rows, frame has %d", ErrInvariantViolation, name, length, n)
		}
	}
	return nil
}

func (f *Frame) sort() {
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := idx[i], idx[j]
		if f.matchStart[a] != f.matchStart[b] {
			return f.matchStart[a] < f.matchStart[b]
		}
		if f.matchEnd[a] != f.matchEnd[b] {
			return f.matchEnd[a] < f.matchEnd[b]
		}
		if f.queryNodeID[a] != f.queryNodeID[b] {
			return f.queryNodeID[a] < f.queryNodeID[b]
		}
		return f.delta[a] < f.delta[b]
	})
	f.reorder(idx)
}

func (f *Frame) reorder(idx []int) {
	apply := func() {
		ms := make([]NodeID, len(idx))
		me := make([]NodeID, len(idx))
		qn := make([]NodeID, len(idx))
		tn := make([]Option[NodeID], len(idx))
		qp := make([]int, len(idx))
		tp := make([]Option[int], len(idx))
		d := make([]float64, len(idx))
		w := make([]float64, len(idx))
		for newPos, oldPos := range idx {
			ms[newPos] = f.matchStart[oldPos]
			me[newPos] = f.matchEnd[oldPos]
			qn[newPos] = f.queryNodeID[oldPos]
			tn[newPos] = f.targetNodeID[oldPos]
			qp[newPos] = f.queryProximity[oldPos]
			tp[newPos] = f.targetProximity[oldPos]
			d[newPos] = f.delta[oldPos]
			w[newPos] = f.weight[oldPos]
		}
		f.matchStart, f.matchEnd, f.queryNodeID, f.targetNodeID = ms, me, qn, tn
		f.queryProximity, f.targetProximity, f.delta, f.weight = qp, tp, d, w
	}
	apply()
}

func (f *Frame) computeMisses() {
	f.misses = make([]int, f.Len())
	for i, tp := range f.targetProximity {
		if !tp.IsSome() {
			f.misses[i] = 1
		}
	}
}

// computeTotals counts, for each row, the number of distinct query_node_id
// values sharing the row's (match_start, match_end) group — the neighbour
// count of that seed, used to normalise the optimizer's per-seed sums.
func (f *Frame) computeTotals() {
	f.totals = make([]int, f.Len())
	type groupKey struct {
		start, end NodeID
	}
	distinctByGroup := make(map[groupKey]map[NodeID]bool)
	for i := range f.matchStart {
		k := groupKey{f.matchStart[i], f.matchEnd[i]}
		if distinctByGroup[k] == nil {
			distinctByGroup[k] = make(map[NodeID]bool)
		}
		distinctByGroup[k][f.queryNodeID[i]] = true
	}
	for i := range f.matchStart {
		k := groupKey{f.matchStart[i], f.matchEnd[i]}
		f.totals[i] = len(distinctByGroup[k])
	}
}

// Len returns the number of rows in the Frame.
func (f *Frame) Len() int {
	return len(f.matchStart)
}

// Column returns a copy of the named column. Unknown names are
// ErrInvalidArgument.
func (f *Frame) Column(name string) (any, error) {
	switch name {
	case "match_start":
		return append([]NodeID(nil), f.matchStart...), nil
	case "match_end":
		return append([]NodeID(nil), f.matchEnd...), nil
	case "query_node_id":
		return append([]NodeID(nil), f.queryNodeID...), nil
	case "target_node_id":
		return append([]Option[NodeID](nil), f.targetNodeID...), nil
	case "query_proximity":
		return append([]int(nil), f.queryProximity...), nil
	case "target_proximity":
		return append([]Option[int](nil), f.targetProximity...), nil
	case "delta":
		return append([]float64(nil), f.delta...), nil
	case "misses":
		return append([]int(nil), f.misses...), nil
	case "totals":
		return append([]int(nil), f.totals...), nil
	case "weight":
		return append([]float64(nil), f.weight...), nil
	default:
		return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidArgument, name)
	}
}

// SetDelta replaces the delta scratch column. delta is single-writer: only
// the optimizer mutates it, and only by full-column replacement.
func (f *Frame) SetDelta(values []float64) error {
	if len(values) != f.Len() {
		return fmt.Errorf("%w: delta has %d values, frame has %d rows", ErrInvalidArgument, len(values), f.Len())
	}
	f.delta = values
	return nil
}

// Proximity computes the derived proximity column: f(h, alpha, d) applied
// to query_proximity, via the same Exponential kernel used elsewhere in this
// package. Every row goes through the kernel, which yields 0 for d > h
// (the join stage itself only produces rows with d <= h).
func (f *Frame) Proximity(h int, alpha float64) ([]float64, error) {
	if h < 0 {
		return nil, fmt.Errorf("%w: h must be >= 0, got %d", ErrInvalidArgument, h)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: alpha must be in [0,1], got %f", ErrInvalidArgument, alpha)
	}

	out := make([]float64, f.Len())
	for i, d := range f.queryProximity {
		v, err := Exponential(h, float32(alpha), d)
		if err != nil {
			return nil, err
		}
		out[i] = float64(v)
	}
	return out, nil
}

// DeltaPlusColumn returns delta_plus(target_proximity, query_proximity) for
// every matched row; miss rows (target_proximity == ⊥) contribute 0, since
// they never participate in the δ⁺ term of the optimizer's cost formula.
// The elementwise subtract-and-clamp runs through vek32 since this column
// is recomputed once per optimizer iteration over every row in the Frame.
func (f *Frame) DeltaPlusColumn() []float64 {
	a := make([]float32, f.Len())
	b := make([]float32, f.Len())
	present := make([]bool, f.Len())
	for i := range a {
		tp, ok := f.targetProximity[i].Get()
		if !ok {
			continue
		}
		a[i] = float32(tp)
		b[i] = float32(f.queryProximity[i])
		present[i] = true
	}

	diff := vek32.Sub(a, b)
	zeros := make([]float32, f.Len())
	clamped := vek32.Maximum(diff, zeros)

	out := make([]float64, f.Len())
	for i, v := range clamped {
		if present[i] {
			out[i] = float64(v)
		}
	}
	return out
}
