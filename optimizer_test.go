package submatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParameters_WithDefaults(t *testing.T) {
	p := Parameters{}.WithDefaults()
	require.Equal(t, 2, p.H)
	require.Equal(t, 0.3, p.Alpha)
	require.Equal(t, 1, p.K)
	require.Equal(t, 10, p.MaxIters)
	require.Equal(t, 1e-6, p.Tol)
	require.Equal(t, 1.0, p.MissPenalty)
}

func TestParameters_WithDefaults_KeepsExplicitValues(t *testing.T) {
	p := Parameters{H: 3, K: 5}.WithDefaults()
	require.Equal(t, 3, p.H)
	require.Equal(t, 5, p.K)
}

func TestParameters_Validate(t *testing.T) {
	require.NoError(t, Parameters{}.WithDefaults().Validate())

	err := Parameters{H: -1, K: 1}.Validate()
	require.True(t, errors.Is(err, ErrInvalidArgument))

	err = Parameters{Alpha: 2, K: 1}.Validate()
	require.True(t, errors.Is(err, ErrInvalidArgument))

	err = Parameters{K: 0}.Validate()
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestRunSearch_EmptyCandidateSetReturnsAllMiss(t *testing.T) {
	query := figureFourQueryGraph(t)
	target := figureFourTargetGraph(t)
	candidates := NewCandidateSet(nil)

	results, err := RunSearch(context.Background(), query, target, candidates, Parameters{MissPenalty: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)

	for _, pair := range results[0].Assignment {
		require.False(t, pair.V.IsSome())
	}
	require.Equal(t, float64(query.Len()), results[0].Cost)
}

func TestRunSearch_CancelledContext(t *testing.T) {
	query := figureFourQueryGraph(t)
	target := figureFourTargetGraph(t)
	candidates := figureFourCandidates()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := RunSearch(ctx, query, target, candidates, Parameters{})
	require.Nil(t, results)
	require.True(t, errors.Is(err, ErrCancelled))
}

func TestRunSearch_InvalidK(t *testing.T) {
	query := figureFourQueryGraph(t)
	target := figureFourTargetGraph(t)
	candidates := figureFourCandidates()

	_, err := RunSearch(context.Background(), query, target, candidates, Parameters{K: -1})
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestRunSearch_FigureFourFindsZeroCostAssignments(t *testing.T) {
	query := figureFourQueryGraph(t)
	target := figureFourTargetGraph(t)
	candidates := figureFourCandidates()

	results, err := RunSearch(context.Background(), query, target, candidates, Parameters{
		H: 2, Alpha: 0.3, K: 2, MissPenalty: 1,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		require.InDelta(t, 0, r.Cost, 1e-6)
		require.Len(t, r.Assignment, 5)
	}

	wantFirst := map[NodeID]NodeID{1: 8, 2: 9, 3: 6, 4: 10, 5: 11}
	wantSecond := map[NodeID]NodeID{1: 8, 2: 9, 3: 12, 4: 10, 5: 11}

	require.Equal(t, wantFirst, assignmentMap(results[0].Assignment))
	require.Equal(t, wantSecond, assignmentMap(results[1].Assignment))
}

func assignmentMap(a Assignment) map[NodeID]NodeID {
	out := make(map[NodeID]NodeID, len(a))
	for _, pair := range a {
		if v, ok := pair.V.Get(); ok {
			out[pair.U] = v
		}
	}
	return out
}

func TestRunSearchWithCheckpoint_RoundTrips(t *testing.T) {
	query := figureFourQueryGraph(t)
	target := figureFourTargetGraph(t)
	candidates := figureFourCandidates()

	_, costs, err := RunSearchWithCheckpoint(context.Background(), query, target, candidates, Parameters{
		H: 2, Alpha: 0.3, K: 1, MissPenalty: 1,
	}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, costs)

	results, _, err := RunSearchWithCheckpoint(context.Background(), query, target, candidates, Parameters{
		H: 2, Alpha: 0.3, K: 1, MissPenalty: 1,
	}, costs)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
