package abstraction

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/lox/handbucket/internal/randutil"
)

// ErrKMeansInvalidArgs covers the fatal argument errors of the clusterer:
// empty data, non-positive K, and K exceeding the point count.
var ErrKMeansInvalidArgs = errors.New("kmeans: invalid arguments")

// KMeansOptions tunes a clustering run.
type KMeansOptions struct {
	// MaxIters caps Lloyd iterations. Exhausting the cap is not an error;
	// the last centroids are returned.
	MaxIters int
	// Epsilon stops the run once the average centroid displacement between
	// iterations falls below it.
	Epsilon float64
	// Seed drives initialisation and empty-cluster reseeding.
	Seed int64
	// Workers bounds the parallel assignment and accumulation passes.
	Workers int
}

// DefaultKMeansOptions mirrors the trainer's iteration cap, epsilon, and
// k-means seed defaults, with a single worker.
func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{MaxIters: 100, Epsilon: 1e-6, Seed: 123, Workers: 1}
}

// KMeansResult carries the centroids plus the run diagnostics consumed by
// the training log.
type KMeansResult struct {
	Centroids  [][]float32
	Inertia    []float64 // per-iteration sum of squared distances
	Reseeds    int       // empty clusters reseeded from random points
	Iterations int
}

// KMeans partitions the data into k centroids with Lloyd's algorithm under
// Euclidean distance. Initial centroids are drawn uniformly at random from
// the data (replacement permitted - deliberately simple, no k-means++). The
// run is deterministic for a fixed (seed, workers) configuration.
func KMeans(ctx context.Context, data [][]float32, k int, opts KMeansOptions) (*KMeansResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: data is empty", ErrKMeansInvalidArgs)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrKMeansInvalidArgs, k)
	}
	if k > len(data) {
		return nil, fmt.Errorf("%w: k %d exceeds %d points", ErrKMeansInvalidArgs, k, len(data))
	}
	if opts.MaxIters <= 0 {
		opts.MaxIters = 100
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	n := len(data)
	dim := len(data[0])
	rng := randutil.New(opts.Seed)

	centroids := make([][]float32, k)
	for i := range centroids {
		centroids[i] = append([]float32(nil), data[rng.IntN(n)]...)
	}

	// Scratch buffers are allocated once per run and reset each iteration;
	// the accumulation pass writes into per-worker partials that a serial
	// reduction merges afterwards.
	assignments := make([]int, n)
	inertias := make([]float64, workers)
	sums := make([][]float64, workers)
	counts := make([][]int64, workers)
	for w := 0; w < workers; w++ {
		sums[w] = make([]float64, k*dim)
		counts[w] = make([]int64, k)
	}
	prev := make([][]float32, k)
	for i := range prev {
		prev[i] = make([]float32, dim)
	}

	result := &KMeansResult{}
	chunk := (n + workers - 1) / workers

	for iter := 0; iter < opts.MaxIters; iter++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Assignment and accumulation, data-parallel over points.
		g := new(errgroup.Group)
		for w := 0; w < workers; w++ {
			start := w * chunk
			end := min(start+chunk, n)
			if start >= end {
				break
			}
			sum, count := sums[w], counts[w]
			for i := range sum {
				sum[i] = 0
			}
			for i := range count {
				count[i] = 0
			}
			inertias[w] = 0
			g.Go(func() error {
				local := 0.0
				for i := start; i < end; i++ {
					point := data[i]
					best, bestDist := 0, math.MaxFloat64
					for j, centroid := range centroids {
						d := 0.0
						for f := 0; f < dim; f++ {
							diff := float64(point[f]) - float64(centroid[f])
							d += diff * diff
						}
						if d < bestDist {
							bestDist = d
							best = j
						}
					}
					assignments[i] = best
					local += bestDist
					count[best]++
					for f := 0; f < dim; f++ {
						sum[best*dim+f] += float64(point[f])
					}
				}
				inertias[w] = local
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		inertia := 0.0
		for w := 0; w < workers; w++ {
			inertia += inertias[w]
		}
		result.Inertia = append(result.Inertia, inertia)

		// Serial reduction across workers, then the centroid update.
		for i := range centroids {
			copy(prev[i], centroids[i])
		}
		for j := 0; j < k; j++ {
			var count int64
			for w := 0; w < workers; w++ {
				count += counts[w][j]
			}
			if count == 0 {
				copy(centroids[j], data[rng.IntN(n)])
				result.Reseeds++
				continue
			}
			for f := 0; f < dim; f++ {
				total := 0.0
				for w := 0; w < workers; w++ {
					total += sums[w][j*dim+f]
				}
				centroids[j][f] = float32(total / float64(count))
			}
		}
		result.Iterations = iter + 1

		// Convergence: average Euclidean displacement of the centroids.
		shift := 0.0
		for j := 0; j < k; j++ {
			d := 0.0
			for f := 0; f < dim; f++ {
				diff := float64(centroids[j][f]) - float64(prev[j][f])
				d += diff * diff
			}
			shift += math.Sqrt(d)
		}
		if shift/float64(k) < opts.Epsilon {
			break
		}
	}

	result.Centroids = centroids
	return result, nil
}
