package submatch

import (
	"context"
	"fmt"

	"golang.org/x/exp/maps"
)

// NodeID identifies a node within a single graph. Ids are positive integers
// assigned by the external store; this package never allocates them.
type NodeID int

// AdjacencyGraph is an in-memory undirected simple graph: integer node ids
// plus a symmetric neighbour list per node. Edges are treated as undirected
// for distance computation regardless of how the external store represents
// them — each directed pair is expected both ways.
//
// A graph is built once per search and never mutated afterwards; there is
// no Add/Delete surface here, unlike a long-lived index. Q and T are each
// loaded into one of these before the neighbourhood expander runs.
type AdjacencyGraph struct {
	nodes     []NodeID
	adjacency map[NodeID][]NodeID
}

// NewAdjacencyGraph builds a graph from a complete adjacency map. It
// validates that the graph is simple (no self-loops) before returning.
func NewAdjacencyGraph(adjacency map[NodeID][]NodeID) (*AdjacencyGraph, error) {
	g := &AdjacencyGraph{
		nodes:     maps.Keys(adjacency),
		adjacency: adjacency,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks that the graph has no self-loops. A self-loop is an edge
// that connects a node to itself; this system assumes simple graphs
// throughout, per the neighbourhood expander's contract.
func (g *AdjacencyGraph) Validate() error {
	for n, neighbors := range g.adjacency {
		for _, m := range neighbors {
			if m == n {
				return fmt.Errorf("%w: self-loop at node %d", ErrInvalidArgument, n)
			}
		}
	}
	return nil
}

// Nodes returns every node id in the graph, in no particular order.
func (g *AdjacencyGraph) Nodes() []NodeID {
	return g.nodes
}

// Neighbors returns the neighbour list of a node, or nil if the node has
// none (including if the node id is unknown).
func (g *AdjacencyGraph) Neighbors(n NodeID) []NodeID {
	return g.adjacency[n]
}

// Len returns the number of nodes in the graph.
func (g *AdjacencyGraph) Len() int {
	return len(g.nodes)
}

// GraphProvider is the external collaborator that owns graph storage. The
// core never persists nodes or edges itself; it asks a provider to
// enumerate a graph's nodes and adjacency for the duration of one search.
type GraphProvider interface {
	// Nodes enumerates the node ids of a graph. Returns ErrNoSuchGraph,
	// unchanged, if graphID does not exist.
	Nodes(ctx context.Context, graphID int64) ([]NodeID, error)

	// Adjacency returns a neighbour list for every node id in the graph.
	// Edges are symmetric: if v appears in Adjacency(u) then u must appear
	// in Adjacency(v). Returns ErrNoSuchGraph, unchanged, if graphID does
	// not exist.
	Adjacency(ctx context.Context, graphID int64) (map[NodeID][]NodeID, error)
}

// LoadGraph materializes a provider's graph into an AdjacencyGraph,
// validating it along the way. Any error from the provider — including
// ErrNoSuchGraph — is returned unchanged, per the error-handling design's
// store-boundary rule.
//
// Nodes and Adjacency are deliberately consulted as two distinct calls: a
// store may report isolated, degree-0 nodes through Nodes that never appear
// as a key in Adjacency's map, and those must still end up in the graph's
// node set rather than being silently dropped.
func LoadGraph(ctx context.Context, p GraphProvider, graphID int64) (*AdjacencyGraph, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	nodes, err := p.Nodes(ctx, graphID)
	if err != nil {
		return nil, err
	}
	adjacency, err := p.Adjacency(ctx, graphID)
	if err != nil {
		return nil, err
	}

	merged := make(map[NodeID][]NodeID, len(adjacency)+len(nodes))
	for n, neighbours := range adjacency {
		merged[n] = neighbours
	}
	for _, n := range nodes {
		if _, ok := merged[n]; !ok {
			merged[n] = nil
		}
	}
	return NewAdjacencyGraph(merged)
}
