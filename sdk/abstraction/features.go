package abstraction

import (
	"math/bits"

	"github.com/lox/handbucket/poker"
)

// Effective hand strength follows "Opponent Modeling in Poker" (Billings,
// Papp, Schaeffer, Szafron, 1998). All enumerations here are exhaustive over
// the remaining deck; opponent hole pairs and runout cards are visited as
// unordered combinations via lowest-set-bit extraction.

// Thresholds in the ascending rank space.
const (
	// tripsRank separates three of a kind and better from weaker hands.
	tripsRank poker.HandRank = 4995
	// strongRank is the lowest two pair (3-3-2-2-4). Ranks strictly above it
	// count as strong, so that one two-pair class counts with the weak hands.
	strongRank poker.HandRank = 4138
)

// Matchup states. HP[initial][final] counts transitions between the current
// street and the end of the hand.
const (
	ahead = iota
	tied
	behind
)

const fullDeckMask = uint64(1)<<52 - 1

// StrengthFeatures is the flop and turn feature vector.
type StrengthFeatures struct {
	// EHS is the effective hand strength: current equity adjusted for the
	// chance of improving from behind and of being outdrawn from ahead.
	EHS float32
	// Asymmetry is a signed, unit-bounded measure of whether drawing upside
	// dominates downside.
	Asymmetry float32
	// NutPotential is the fraction of remaining runouts where the hero makes
	// three of a kind or better.
	NutPotential float32
}

// Vector returns the components in clustering order.
func (f StrengthFeatures) Vector() []float32 {
	return []float32{f.EHS, f.Asymmetry, f.NutPotential}
}

// RiverFeatures is the river feature vector. There are no future cards, so
// the components are pure showdown equities plus a blocker measure.
type RiverFeatures struct {
	// EquityTotal is the hero's equity against a uniform random hand.
	EquityTotal float32
	// EquityVsStrong is the equity restricted to opponent combos ranked above
	// strongRank: two pair or better, except the lowest two pair.
	EquityVsStrong float32
	// EquityVsWeak is the equity restricted to the remaining combos: one pair
	// or worse, plus the lowest two pair.
	EquityVsWeak float32
	// BlockerIndex measures how much the hero's hole cards reduce the
	// opponent's strong combos relative to the board-only distribution.
	BlockerIndex float32
}

// Vector returns the components in clustering order.
func (f RiverFeatures) Vector() []float32 {
	return []float32{f.EquityTotal, f.EquityVsStrong, f.EquityVsWeak, f.BlockerIndex}
}

func cardBit(c poker.CardIndex) uint64 {
	return 1 << c
}

func matchup(hero, villain poker.HandRank) int {
	switch {
	case hero > villain:
		return ahead
	case hero == villain:
		return tied
	default:
		return behind
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AnalyzeFlop computes the flop feature vector for a hand and a three-card
// board. The five cards must be distinct; this is a caller invariant.
func AnalyzeFlop(hand [2]poker.CardIndex, board [3]poker.CardIndex) StrengthFeatures {
	h0, h1 := poker.Deck[hand[0]], poker.Deck[hand[1]]
	b0, b1, b2 := poker.Deck[board[0]], poker.Deck[board[1]], poker.Deck[board[2]]

	avail := ^(cardBit(hand[0]) | cardBit(hand[1]) |
		cardBit(board[0]) | cardBit(board[1]) | cardBit(board[2])) & fullDeckMask

	selfRank := poker.Eval5(h0, h1, b0, b1, b2)

	// Hero's best seven-card rank for every unordered (turn, river) pair,
	// stored symmetrically so later lookups ignore order.
	var heroBest [52][52]poker.HandRank
	for m := avail; m != 0; m &= m - 1 {
		t := bits.TrailingZeros64(m)
		tc := poker.Deck[t]
		for m2 := m & (m - 1); m2 != 0; m2 &= m2 - 1 {
			r := bits.TrailingZeros64(m2)
			rank := poker.Eval7(h0, h1, b0, b1, b2, tc, poker.Deck[r])
			heroBest[t][r] = rank
			heroBest[r][t] = rank
		}
	}

	var stateTotal [3]int64
	var hp [3][3]int64

	for vm := avail; vm != 0; vm &= vm - 1 {
		v1 := bits.TrailingZeros64(vm)
		c1 := poker.Deck[v1]
		for vm2 := vm & (vm - 1); vm2 != 0; vm2 &= vm2 - 1 {
			v2 := bits.TrailingZeros64(vm2)
			c2 := poker.Deck[v2]

			state := matchup(selfRank, poker.Eval5(b0, b1, b2, c1, c2))
			stateTotal[state]++

			runout := avail &^ (uint64(1)<<v1 | uint64(1)<<v2)
			for tm := runout; tm != 0; tm &= tm - 1 {
				t := bits.TrailingZeros64(tm)
				tc := poker.Deck[t]
				for rm := tm & (tm - 1); rm != 0; rm &= rm - 1 {
					r := bits.TrailingZeros64(rm)
					final := matchup(heroBest[t][r],
						poker.Eval7(c1, c2, b0, b1, b2, tc, poker.Deck[r]))
					hp[state][final]++
				}
			}
		}
	}

	// 990 unordered (turn, river) pairs remain once an opponent pair is
	// removed from the 47-card residue.
	ehs, asym := potentialFeatures(stateTotal, hp, 990)

	nutHits, nutCells := 0, 0
	for m := avail; m != 0; m &= m - 1 {
		t := bits.TrailingZeros64(m)
		for m2 := m & (m - 1); m2 != 0; m2 &= m2 - 1 {
			r := bits.TrailingZeros64(m2)
			nutCells++
			if heroBest[t][r] > tripsRank {
				nutHits++
			}
		}
	}
	nut := 0.0
	if nutCells > 0 {
		nut = float64(nutHits) / float64(nutCells)
	}

	return StrengthFeatures{EHS: float32(ehs), Asymmetry: float32(asym), NutPotential: float32(nut)}
}

// AnalyzeTurn computes the turn feature vector for a hand and a four-card
// board. One card to come instead of two; otherwise identical in shape to
// the flop computation.
func AnalyzeTurn(hand [2]poker.CardIndex, board [4]poker.CardIndex) StrengthFeatures {
	h0, h1 := poker.Deck[hand[0]], poker.Deck[hand[1]]
	b0, b1, b2, b3 := poker.Deck[board[0]], poker.Deck[board[1]], poker.Deck[board[2]], poker.Deck[board[3]]

	avail := ^(cardBit(hand[0]) | cardBit(hand[1]) | cardBit(board[0]) |
		cardBit(board[1]) | cardBit(board[2]) | cardBit(board[3])) & fullDeckMask

	selfRank := poker.Eval6(h0, h1, b0, b1, b2, b3)

	// Hero's best seven-card rank for every possible river card.
	var heroBest [52]poker.HandRank
	for m := avail; m != 0; m &= m - 1 {
		r := bits.TrailingZeros64(m)
		heroBest[r] = poker.Eval7(h0, h1, b0, b1, b2, b3, poker.Deck[r])
	}

	var stateTotal [3]int64
	var hp [3][3]int64

	for vm := avail; vm != 0; vm &= vm - 1 {
		v1 := bits.TrailingZeros64(vm)
		c1 := poker.Deck[v1]
		for vm2 := vm & (vm - 1); vm2 != 0; vm2 &= vm2 - 1 {
			v2 := bits.TrailingZeros64(vm2)
			c2 := poker.Deck[v2]

			state := matchup(selfRank, poker.Eval6(b0, b1, b2, b3, c1, c2))
			stateTotal[state]++

			rivers := avail &^ (uint64(1)<<v1 | uint64(1)<<v2)
			for rm := rivers; rm != 0; rm &= rm - 1 {
				r := bits.TrailingZeros64(rm)
				final := matchup(heroBest[r],
					poker.Eval7(c1, c2, b0, b1, b2, b3, poker.Deck[r]))
				hp[state][final]++
			}
		}
	}

	// 44 river cards remain once an opponent pair leaves the 46-card residue.
	ehs, asym := potentialFeatures(stateTotal, hp, 44)

	nutHits, nutCells := 0, 0
	for m := avail; m != 0; m &= m - 1 {
		r := bits.TrailingZeros64(m)
		nutCells++
		if heroBest[r] > tripsRank {
			nutHits++
		}
	}
	nut := 0.0
	if nutCells > 0 {
		nut = float64(nutHits) / float64(nutCells)
	}

	return StrengthFeatures{EHS: float32(ehs), Asymmetry: float32(asym), NutPotential: float32(nut)}
}

// potentialFeatures derives EHS and asymmetry from the matchup totals and
// the transition matrix. perPairRunouts is the number of runout combinations
// enumerated per opponent pair; it folds the runout count into the Ppot and
// Npot denominators so both land in [0, 1].
func potentialFeatures(stateTotal [3]int64, hp [3][3]int64, perPairRunouts float64) (ehs, asym float64) {
	total := float64(stateTotal[ahead] + stateTotal[tied] + stateTotal[behind])
	hs := (float64(stateTotal[ahead]) + 0.5*float64(stateTotal[tied])) / total

	ppot := 0.0
	if den := float64(stateTotal[behind] + stateTotal[tied]); den > 0 {
		ppot = (float64(hp[behind][ahead]) +
			0.5*float64(hp[behind][tied]) +
			0.5*float64(hp[tied][ahead])) / (den * perPairRunouts)
	}
	npot := 0.0
	if den := float64(stateTotal[ahead] + stateTotal[tied]); den > 0 {
		npot = (float64(hp[ahead][behind]) +
			0.5*float64(hp[ahead][tied]) +
			0.5*float64(hp[tied][behind])) / (den * perPairRunouts)
	}

	ehs = hs + (1-hs)*ppot - hs*npot

	upside := (1 - hs) * ppot
	downside := hs * npot
	asym = clip((upside-downside)/(upside+downside+1e-6), -1, 1)
	return ehs, asym
}

// AnalyzeRiver computes the river feature vector for a hand and a full
// five-card board.
func AnalyzeRiver(hand [2]poker.CardIndex, board [5]poker.CardIndex) RiverFeatures {
	h0, h1 := poker.Deck[hand[0]], poker.Deck[hand[1]]
	b0, b1, b2 := poker.Deck[board[0]], poker.Deck[board[1]], poker.Deck[board[2]]
	b3, b4 := poker.Deck[board[3]], poker.Deck[board[4]]

	selfRank := poker.Eval7(h0, h1, b0, b1, b2, b3, b4)

	// Reference distribution for the blocker index: opponent combos drawn
	// with only the board removed, so the hero's own cards stay in the deck.
	boardOnly := ^(cardBit(board[0]) | cardBit(board[1]) | cardBit(board[2]) |
		cardBit(board[3]) | cardBit(board[4])) & fullDeckMask

	strongNoHero, totalNoHero := 0, 0
	for vm := boardOnly; vm != 0; vm &= vm - 1 {
		v1 := bits.TrailingZeros64(vm)
		c1 := poker.Deck[v1]
		for vm2 := vm & (vm - 1); vm2 != 0; vm2 &= vm2 - 1 {
			v2 := bits.TrailingZeros64(vm2)
			totalNoHero++
			if poker.Eval7(c1, poker.Deck[v2], b0, b1, b2, b3, b4) > strongRank {
				strongNoHero++
			}
		}
	}

	avail := boardOnly &^ (cardBit(hand[0]) | cardBit(hand[1]))

	var (
		strongCombos, weakCombos, totalCombos int
		winAll, tieAll                        int
		winStrong, tieStrong                  int
		winWeak, tieWeak                      int
	)

	for vm := avail; vm != 0; vm &= vm - 1 {
		v1 := bits.TrailingZeros64(vm)
		c1 := poker.Deck[v1]
		for vm2 := vm & (vm - 1); vm2 != 0; vm2 &= vm2 - 1 {
			v2 := bits.TrailingZeros64(vm2)
			villainRank := poker.Eval7(c1, poker.Deck[v2], b0, b1, b2, b3, b4)

			totalCombos++
			win := selfRank > villainRank
			tie := selfRank == villainRank
			if win {
				winAll++
			} else if tie {
				tieAll++
			}

			if villainRank > strongRank {
				strongCombos++
				if win {
					winStrong++
				} else if tie {
					tieStrong++
				}
			} else {
				weakCombos++
				if win {
					winWeak++
				} else if tie {
					tieWeak++
				}
			}
		}
	}

	equity := func(wins, ties, total int) float64 {
		if total == 0 {
			return 0
		}
		return (float64(wins) + 0.5*float64(ties)) / float64(total)
	}

	blocker := 0.0
	if strongNoHero > 0 {
		// Scale the board-only count down to the hero universe (990 of 1081
		// combos) so the comparison is fair.
		expected := float64(strongNoHero) * float64(totalCombos) / float64(totalNoHero)
		blocker = clip(1-float64(strongCombos)/expected, -1, 1)
	}

	return RiverFeatures{
		EquityTotal:    float32(equity(winAll, tieAll, totalCombos)),
		EquityVsStrong: float32(equity(winStrong, tieStrong, strongCombos)),
		EquityVsWeak:   float32(equity(winWeak, tieWeak, weakCombos)),
		BlockerIndex:   float32(blocker),
	}
}

// AnalyzeVector dispatches on board length and returns the raw feature
// vector for the street. Board lengths other than 3, 4, or 5 are a caller
// contract violation.
func AnalyzeVector(hand [2]poker.CardIndex, board []poker.CardIndex) []float32 {
	switch len(board) {
	case 3:
		return AnalyzeFlop(hand, [3]poker.CardIndex{board[0], board[1], board[2]}).Vector()
	case 4:
		return AnalyzeTurn(hand, [4]poker.CardIndex{board[0], board[1], board[2], board[3]}).Vector()
	case 5:
		return AnalyzeRiver(hand, [5]poker.CardIndex{board[0], board[1], board[2], board[3], board[4]}).Vector()
	default:
		panic("abstraction: board must contain 3, 4, or 5 cards")
	}
}
