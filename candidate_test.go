package submatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCandidateSet(t *testing.T) {
	cs := NewCandidateSet([]Candidate{
		{U: 1, V: 1, Weight: 0.9},
		{U: 1, V: 4, Weight: 0.5},
		{U: 2, V: 2, Weight: 1},
	})

	require.Equal(t, 3, cs.Len())
	require.ElementsMatch(t, []NodeID{1, 2}, cs.QueryNodes())
	require.Len(t, cs.TargetsFor(1), 2)
	require.Nil(t, cs.TargetsFor(99))

	w, ok := cs.Weight(1, 4)
	require.True(t, ok)
	require.Equal(t, 0.5, w)

	_, ok = cs.Weight(1, 99)
	require.False(t, ok)
}

type stubCandidateProvider struct {
	candidates map[[2]int64][]Candidate
}

func (s stubCandidateProvider) Candidates(ctx context.Context, queryGraphID, targetGraphID int64) ([]Candidate, error) {
	c, ok := s.candidates[[2]int64{queryGraphID, targetGraphID}]
	if !ok {
		return nil, ErrNoSuchGraph
	}
	return c, nil
}

func TestLoadCandidates(t *testing.T) {
	p := stubCandidateProvider{candidates: map[[2]int64][]Candidate{
		{1, 2}: {{U: 1, V: 1, Weight: 1}},
	}}

	cs, err := LoadCandidates(context.Background(), p, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 1, cs.Len())
}

func TestLoadCandidates_NoSuchGraph(t *testing.T) {
	p := stubCandidateProvider{candidates: map[[2]int64][]Candidate{}}

	_, err := LoadCandidates(context.Background(), p, 1, 2)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNoSuchGraph))
}
