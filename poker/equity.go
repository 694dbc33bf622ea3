package poker

import (
	rand "math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/lox/handbucket/internal/randutil"
)

// EstimateEquity estimates the hero's showdown equity against a uniform
// random opponent hand by Monte Carlo: each sample deals two opponent cards
// and the remaining board from the unseen deck, then compares the seven-card
// ranks, counting ties as half. The board may hold 0 to 5 cards; all cards
// must be distinct.
func EstimateEquity(hole [2]CardIndex, board []CardIndex, samples int, seed int64) float64 {
	wins, ties := equityWorker(hole, board, samples, randutil.New(seed))
	if samples == 0 {
		return 0
	}
	return (float64(wins) + 0.5*float64(ties)) / float64(samples)
}

// EstimateEquityParallel splits the samples across workers, each with a
// private PRNG seeded from seed + workerID, and merges the counts.
func EstimateEquityParallel(hole [2]CardIndex, board []CardIndex, samples, workers int, seed int64) float64 {
	if workers <= 1 || samples < workers {
		return EstimateEquity(hole, board, samples, seed)
	}

	winCounts := make([]int, workers)
	tieCounts := make([]int, workers)
	chunk := (samples + workers - 1) / workers

	g := new(errgroup.Group)
	total := 0
	for w := 0; w < workers; w++ {
		n := min(chunk, samples-total)
		if n <= 0 {
			break
		}
		total += n
		rng := randutil.New(seed + int64(w))
		g.Go(func() error {
			winCounts[w], tieCounts[w] = equityWorker(hole, board, n, rng)
			return nil
		})
	}
	g.Wait() // workers never fail

	wins, ties := 0, 0
	for w := 0; w < workers; w++ {
		wins += winCounts[w]
		ties += tieCounts[w]
	}
	return (float64(wins) + 0.5*float64(ties)) / float64(total)
}

func equityWorker(hole [2]CardIndex, board []CardIndex, samples int, rng *rand.Rand) (wins, ties int) {
	var used uint64
	used |= 1 << hole[0]
	used |= 1 << hole[1]
	for _, c := range board {
		used |= 1 << c
	}

	need := 2 + 5 - len(board)
	drawn := make([]CardIndex, need)

	var hero, villain [7]Card
	hero[0], hero[1] = Deck[hole[0]], Deck[hole[1]]
	for i, c := range board {
		hero[2+i] = Deck[c]
	}

	for s := 0; s < samples; s++ {
		mask := used
		for i := 0; i < need; {
			card := CardIndex(rng.IntN(52))
			if mask&(1<<card) != 0 {
				continue
			}
			mask |= 1 << card
			drawn[i] = card
			i++
		}

		// First two drawn cards are the opponent's; the rest complete the
		// shared board.
		villain[0], villain[1] = Deck[drawn[0]], Deck[drawn[1]]
		for i, c := range drawn[2:] {
			hero[2+len(board)+i] = Deck[c]
		}
		copy(villain[2:], hero[2:])

		heroRank := Eval7(hero[0], hero[1], hero[2], hero[3], hero[4], hero[5], hero[6])
		villainRank := Eval7(villain[0], villain[1], villain[2], villain[3], villain[4], villain[5], villain[6])
		if heroRank > villainRank {
			wins++
		} else if heroRank == villainRank {
			ties++
		}
	}
	return wins, ties
}
