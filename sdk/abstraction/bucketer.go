package abstraction

import (
	"fmt"

	"github.com/lox/handbucket/poker"
)

// Bucketer serves constant-time bucket lookups against a frozen centroid
// store. It is safe for concurrent use: the store is never mutated after
// construction, and feature extraction is a pure function of its inputs.
type Bucketer struct {
	store *Store
}

// NewBucketer wraps an in-memory store.
func NewBucketer(store *Store) *Bucketer {
	return &Bucketer{store: store}
}

// LoadBucketer reads the centroid store from disk and wraps it.
func LoadBucketer(path string) (*Bucketer, error) {
	store, err := LoadStore(path)
	if err != nil {
		return nil, err
	}
	return NewBucketer(store), nil
}

// Buckets returns the centroid count for a street.
func (b *Bucketer) Buckets(street Street) int {
	return b.store.Streets[street].K()
}

// Bucket maps a (hand, board) pair to its bucket ID. An empty board yields
// the preflop class in [0..168]; otherwise the board length selects the
// street and the ID is the nearest centroid of the z-scored feature vector,
// ties resolved to the lowest index. Cards must be distinct; board lengths
// other than 0, 3, 4, 5 are a caller contract violation.
func (b *Bucketer) Bucket(hand [2]poker.CardIndex, board []poker.CardIndex) int {
	if len(board) == 0 {
		return PreflopBucket(hand[0], hand[1])
	}

	street, ok := StreetForBoard(len(board))
	if !ok {
		panic(fmt.Sprintf("abstraction: bucket called with %d board cards", len(board)))
	}

	vec := AnalyzeVector(hand, board)
	model := b.store.Streets[street]
	model.Stats.Apply(vec)
	return nearestCentroid(vec, model.Centroids)
}

// nearestCentroid returns the index of the centroid with the smallest
// squared Euclidean distance; the strict less-than keeps ties at the lowest
// index.
func nearestCentroid(vec []float32, centroids [][]float32) int {
	best := 0
	bestDist := squaredDistance(vec, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := squaredDistance(vec, centroids[i]); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func squaredDistance(a, b []float32) float64 {
	d := 0.0
	for f := range a {
		diff := float64(a[f]) - float64(b[f])
		d += diff * diff
	}
	return d
}
