package reembed

import (
	"fmt"
	"math"
)

// Normalize returns a unit-length copy of v. The magnitude is accumulated in
// float64 so long vectors of small components don't lose precision.
func Normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return nil, ErrZeroVector
	}
	mag := math.Sqrt(sum)
	if math.IsInf(mag, 0) || math.IsNaN(mag) {
		return nil, fmt.Errorf("cannot normalize vector with magnitude %v", mag)
	}

	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / mag)
	}
	return out, nil
}
