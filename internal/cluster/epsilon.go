package cluster

import (
	"sort"
)

// epsilonFloor keeps the tuned radius usable when the k-distance curve is
// flat at zero (many identical vectors).
const epsilonFloor = 1e-4

// estimateEpsilon picks the neighborhood radius from the sorted k-distance
// curve: each point's distance to its minPts-th nearest neighbor (itself
// included), ascending. The chosen epsilon sits at the curve's knee,
// approximated by the point of maximum discrete second derivative. This
// replaces a hand-tuned radius per corpus.
func estimateEpsilon(dist [][]float64, minPts int) float64 {
	n := len(dist)
	kdist := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		row := append([]float64(nil), dist[i]...)
		sort.Float64s(row)
		k := minPts - 1 // row[0] is the point itself
		if k >= len(row) {
			k = len(row) - 1
		}
		kdist = append(kdist, row[k])
	}
	sort.Float64s(kdist)

	eps := kneeValue(kdist)
	if eps < epsilonFloor {
		eps = epsilonFloor
	}
	return eps
}

// kneeValue returns the value at the point of maximum curvature of an
// ascending curve, approximated by the largest discrete second
// derivative. Curves too short for a second derivative fall back to the
// median.
func kneeValue(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	if len(curve) < 3 {
		return curve[len(curve)/2]
	}

	best, bestIdx := 0.0, 1
	for i := 1; i < len(curve)-1; i++ {
		curvature := curve[i+1] - 2*curve[i] + curve[i-1]
		if curvature > best {
			best = curvature
			bestIdx = i
		}
	}
	return curve[bestIdx]
}
