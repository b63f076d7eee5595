package main

import (
	"context"
	"fmt"

	"github.com/coder/submatch"
)

// undirected turns a list of edges into a symmetric adjacency map, since
// neighbourhood expansion walks edges in both directions.
func undirected(edges [][2]submatch.NodeID) map[submatch.NodeID][]submatch.NodeID {
	adj := make(map[submatch.NodeID][]submatch.NodeID)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	return adj
}

func main() {
	ctx := context.Background()

	queryEdges := [][2]submatch.NodeID{
		{1, 2}, {1, 3}, {2, 4}, {4, 5},
	}
	targetEdges := [][2]submatch.NodeID{
		{1, 2}, {1, 3}, {1, 4}, {3, 7}, {4, 5}, {4, 6},
		{5, 7}, {6, 8}, {8, 9}, {8, 12}, {9, 10}, {10, 7},
		{10, 11}, {11, 12}, {11, 13},
	}

	graphs := submatch.NewMemoryGraphProvider()
	graphs.AddGraph(1, undirected(queryEdges))
	graphs.AddGraph(2, undirected(targetEdges))

	query, err := submatch.LoadGraph(ctx, graphs, 1)
	if err != nil {
		panic(err)
	}
	target, err := submatch.LoadGraph(ctx, graphs, 2)
	if err != nil {
		panic(err)
	}

	candidatePairs := map[submatch.NodeID][]submatch.NodeID{
		1: {1, 4, 8},
		2: {2, 5, 9},
		3: {3, 6, 12, 13},
		4: {7, 10},
		5: {11},
	}
	var candidates []submatch.Candidate
	for u, targets := range candidatePairs {
		for _, v := range targets {
			candidates = append(candidates, submatch.Candidate{U: u, V: v, Weight: 1})
		}
	}
	providers := submatch.NewMemoryCandidateProvider()
	providers.AddCandidates(1, 2, candidates)

	candidateSet, err := submatch.LoadCandidates(ctx, providers, 1, 2)
	if err != nil {
		panic(err)
	}

	params := submatch.Parameters{H: 2, Alpha: 0.3, K: 2, MissPenalty: 1}
	results, err := submatch.RunSearch(ctx, query, target, candidateSet, params)
	if err != nil {
		panic(err)
	}

	for i, r := range results {
		fmt.Printf("result %d: cost=%.4f\n", i, r.Cost)
		for _, pair := range r.Assignment {
			if v, ok := pair.V.Get(); ok {
				fmt.Printf("  %d -> %d\n", pair.U, v)
			} else {
				fmt.Printf("  %d -> (none)\n", pair.U)
			}
		}
	}
}
