package abstraction

import "math"

// stdFloor is the smallest standard deviation worth dividing by; columns
// with less spread are left un-normalised.
const stdFloor = 1e-9

// Stats holds the per-feature mean and standard deviation used to z-score
// training data and, later, runtime vectors. The persisted values are always
// the ones recorded at training time.
type Stats struct {
	Mean []float32
	Std  []float32
}

// Dim returns the feature dimension the stats were computed over.
func (s Stats) Dim() int {
	return len(s.Mean)
}

// ComputeStats runs the two-pass mean / population standard deviation over a
// training set. Accumulators are double precision to suppress round-off.
func ComputeStats(data [][]float32, dim int) Stats {
	mean := make([]float64, dim)
	for _, point := range data {
		for f := 0; f < dim; f++ {
			mean[f] += float64(point[f])
		}
	}
	n := float64(len(data))
	for f := range mean {
		mean[f] /= n
	}

	variance := make([]float64, dim)
	for _, point := range data {
		for f := 0; f < dim; f++ {
			diff := float64(point[f]) - mean[f]
			variance[f] += diff * diff
		}
	}

	stats := Stats{Mean: make([]float32, dim), Std: make([]float32, dim)}
	for f := 0; f < dim; f++ {
		stats.Mean[f] = float32(mean[f])
		stats.Std[f] = float32(math.Sqrt(variance[f] / n))
	}
	return stats
}

// Apply z-scores a single vector in place. Features with negligible spread
// are left unchanged.
func (s Stats) Apply(vec []float32) {
	for f := range vec {
		if s.Std[f] > stdFloor {
			vec[f] = (vec[f] - s.Mean[f]) / s.Std[f]
		}
	}
}

// ApplyAll z-scores every vector of a training set in place.
func (s Stats) ApplyAll(data [][]float32) {
	for _, vec := range data {
		s.Apply(vec)
	}
}
