package abstraction

import (
	"context"
	rand "math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/lox/handbucket/internal/randutil"
	"github.com/lox/handbucket/poker"
)

// Sampler draws uniform random (hand, board) deals for a street and collects
// their raw feature vectors into a training set. The loop over samples is
// embarrassingly parallel: each worker owns a private PRNG seeded from
// baseSeed + workerID and writes to disjoint slots of the output, so the
// only synchronisation is the final join.
type Sampler struct {
	seed    int64
	workers int
}

// NewSampler creates a sampler. workers <= 0 uses a single worker.
func NewSampler(seed int64, workers int) *Sampler {
	if workers <= 0 {
		workers = 1
	}
	return &Sampler{seed: seed, workers: workers}
}

// Sample computes n raw feature vectors for the street. The result is
// deterministic for a fixed (seed, workers, n) configuration.
func (s *Sampler) Sample(ctx context.Context, street Street, n int) ([][]float32, error) {
	data := make([][]float32, n)

	g, ctx := errgroup.WithContext(ctx)
	chunk := (n + s.workers - 1) / s.workers
	for w := 0; w < s.workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		rng := randutil.New(s.seed + int64(w))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%256 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				hand, board := drawDeal(rng, street.BoardSize())
				data[i] = analyzeStreet(street, hand, board)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func analyzeStreet(street Street, hand [2]poker.CardIndex, board []poker.CardIndex) []float32 {
	switch street {
	case Flop:
		return AnalyzeFlop(hand, [3]poker.CardIndex{board[0], board[1], board[2]}).Vector()
	case Turn:
		return AnalyzeTurn(hand, [4]poker.CardIndex{board[0], board[1], board[2], board[3]}).Vector()
	default:
		return AnalyzeRiver(hand, [5]poker.CardIndex{board[0], board[1], board[2], board[3], board[4]}).Vector()
	}
}

// drawDeal fills a hand and a board with distinct random cards using
// bitmask rejection.
func drawDeal(rng *rand.Rand, boardSize int) ([2]poker.CardIndex, []poker.CardIndex) {
	var hand [2]poker.CardIndex
	board := make([]poker.CardIndex, boardSize)

	var used uint64
	fill := 0
	for fill < 2+boardSize {
		card := poker.CardIndex(rng.IntN(52))
		if used&(1<<card) != 0 {
			continue
		}
		used |= 1 << card
		if fill < 2 {
			hand[fill] = card
		} else {
			board[fill-2] = card
		}
		fill++
	}
	return hand, board
}
