package submatch

import (
	"fmt"

	"github.com/chewxy/math32"
)

// ProximityFunc is a function that discounts evidence from a neighbour at
// hop distance d. The package default is Exponential, the decay used by the
// Figure 4 algorithm; it is exposed as a named type, mirroring the
// distance-function abstraction the rest of this stack uses for pluggable
// numeric kernels.
type ProximityFunc func(h int, alpha float32, d int) (float32, error)

// Exponential computes f(h, alpha, d) = alpha^d if d <= h, else 0.
// alpha must be in [0,1] and h must be >= 0; violations are
// ErrInvalidArgument.
func Exponential(h int, alpha float32, d int) (float32, error) {
	if h < 0 {
		return 0, fmt.Errorf("%w: h must be >= 0, got %d", ErrInvalidArgument, h)
	}
	if alpha < 0 || alpha > 1 {
		return 0, fmt.Errorf("%w: alpha must be in [0,1], got %f", ErrInvalidArgument, alpha)
	}
	if d > h {
		return 0, nil
	}
	return math32.Pow(alpha, float32(d)), nil
}

// ProximityColumn applies a ProximityFunc elementwise to a column of hop
// distances, as the Frame's derived "proximity" column does over
// query_proximity.
func ProximityColumn(fn ProximityFunc, h int, alpha float32, distances []int) ([]float32, error) {
	out := make([]float32, len(distances))
	for i, d := range distances {
		v, err := fn(h, alpha, d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DeltaPlus computes the elementwise positive part of a-b: max(a-b, 0). Both
// inputs are plain hop counts with no ⊥ entries, so it applies only to
// matched rows; a miss row has no target distance to pass in.
func DeltaPlus(a, b []int) []float32 {
	out := make([]float32, len(a))
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = 0
		}
		out[i] = float32(d)
	}
	return out
}
