package abstraction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handbucket/internal/randutil"
	"github.com/lox/handbucket/poker"
)

func boardN(t *testing.T, s string, n int) []poker.CardIndex {
	t.Helper()
	cards := poker.MustParseCards(s)
	require.Len(t, cards, n)
	return cards
}

func requireFinite(t *testing.T, vec []float32) {
	t.Helper()
	for i, v := range vec {
		require.False(t, math.IsNaN(float64(v)), "component %d is NaN", i)
		require.False(t, math.IsInf(float64(v), 0), "component %d is Inf", i)
	}
}

func TestFlopFeatureBounds(t *testing.T) {
	rng := randutil.New(7)
	for i := 0; i < 8; i++ {
		hand, board := drawDeal(rng, 3)
		f := AnalyzeFlop(hand, [3]poker.CardIndex{board[0], board[1], board[2]})

		requireFinite(t, f.Vector())
		assert.GreaterOrEqual(t, f.EHS, float32(0))
		assert.LessOrEqual(t, f.EHS, float32(1))
		assert.GreaterOrEqual(t, f.Asymmetry, float32(-1))
		assert.LessOrEqual(t, f.Asymmetry, float32(1))
		assert.GreaterOrEqual(t, f.NutPotential, float32(0))
		assert.LessOrEqual(t, f.NutPotential, float32(1))
	}
}

func TestTurnFeatureBounds(t *testing.T) {
	rng := randutil.New(11)
	for i := 0; i < 32; i++ {
		hand, board := drawDeal(rng, 4)
		f := AnalyzeTurn(hand, [4]poker.CardIndex{board[0], board[1], board[2], board[3]})

		requireFinite(t, f.Vector())
		assert.GreaterOrEqual(t, f.EHS, float32(0))
		assert.LessOrEqual(t, f.EHS, float32(1))
		assert.GreaterOrEqual(t, f.Asymmetry, float32(-1))
		assert.LessOrEqual(t, f.Asymmetry, float32(1))
		assert.GreaterOrEqual(t, f.NutPotential, float32(0))
		assert.LessOrEqual(t, f.NutPotential, float32(1))
	}
}

func TestRiverFeatureBounds(t *testing.T) {
	rng := randutil.New(13)
	for i := 0; i < 64; i++ {
		hand, board := drawDeal(rng, 5)
		f := AnalyzeRiver(hand, [5]poker.CardIndex{board[0], board[1], board[2], board[3], board[4]})

		requireFinite(t, f.Vector())
		assert.GreaterOrEqual(t, f.EquityTotal, float32(0))
		assert.LessOrEqual(t, f.EquityTotal, float32(1))
		assert.GreaterOrEqual(t, f.EquityVsStrong, float32(0))
		assert.LessOrEqual(t, f.EquityVsStrong, float32(1))
		assert.GreaterOrEqual(t, f.EquityVsWeak, float32(0))
		assert.LessOrEqual(t, f.EquityVsWeak, float32(1))
		assert.GreaterOrEqual(t, f.BlockerIndex, float32(-1))
		assert.LessOrEqual(t, f.BlockerIndex, float32(1))
	}
}

// Swapping the hole cards or permuting the board must not change any
// component: the extractors see unordered card sets.
func TestFeatureSymmetry(t *testing.T) {
	hand := parseTwo(t, "AhQd")
	board := boardN(t, "Ks7s2h", 3)

	base := AnalyzeFlop(hand, [3]poker.CardIndex{board[0], board[1], board[2]})
	swapped := AnalyzeFlop([2]poker.CardIndex{hand[1], hand[0]}, [3]poker.CardIndex{board[0], board[1], board[2]})
	permuted := AnalyzeFlop(hand, [3]poker.CardIndex{board[2], board[0], board[1]})

	assert.Equal(t, base, swapped)
	assert.Equal(t, base, permuted)

	rBoard := boardN(t, "Ks7s2h9c3d", 5)
	rBase := AnalyzeRiver(hand, [5]poker.CardIndex{rBoard[0], rBoard[1], rBoard[2], rBoard[3], rBoard[4]})
	rPermuted := AnalyzeRiver(hand, [5]poker.CardIndex{rBoard[4], rBoard[2], rBoard[0], rBoard[1], rBoard[3]})
	assert.Equal(t, rBase, rPermuted)
}

// Feature extraction is a pure function: identical inputs give identical
// outputs across calls.
func TestFeatureDeterminism(t *testing.T) {
	hand := parseTwo(t, "Jh9h")
	board := boardN(t, "8h7c2d", 3)

	first := AnalyzeFlop(hand, [3]poker.CardIndex{board[0], board[1], board[2]})
	second := AnalyzeFlop(hand, [3]poker.CardIndex{board[0], board[1], board[2]})
	assert.Equal(t, first, second)
}

// The stone-cold nuts on the river: hero wins every matchup, including all
// strong combos.
func TestRiverRoyalFlush(t *testing.T) {
	hand := parseTwo(t, "AsKs")
	board := boardN(t, "QsJsTs2d3c", 5)

	f := AnalyzeRiver(hand, [5]poker.CardIndex{board[0], board[1], board[2], board[3], board[4]})
	assert.Equal(t, float32(1), f.EquityTotal)
	assert.Equal(t, float32(1), f.EquityVsStrong)
	// Holding the As and Ks removes some flush and broadway combos from the
	// opponent's range, so the blocker index sits modestly above zero.
	assert.GreaterOrEqual(t, f.BlockerIndex, float32(0))
	assert.Less(t, f.BlockerIndex, float32(0.5))
}

// Bottom two pair on a dry flop is comfortably ahead of a random hand.
func TestFlopBottomTwoPair(t *testing.T) {
	hand := parseTwo(t, "3s2h")
	board := boardN(t, "3h2dJs", 3)

	f := AnalyzeFlop(hand, [3]poker.CardIndex{board[0], board[1], board[2]})
	assert.Greater(t, f.EHS, float32(0.4))
}

// A made royal flush has no further upside: nut potential counts runouts
// where the hero already holds trips or better, which is all of them, and
// the downside term must be zero.
func TestTurnMadeNuts(t *testing.T) {
	hand := parseTwo(t, "AsKs")
	board := boardN(t, "QsJsTs2d", 4)

	f := AnalyzeTurn(hand, [4]poker.CardIndex{board[0], board[1], board[2], board[3]})
	assert.InDelta(t, 1.0, float64(f.EHS), 1e-6)
	assert.Equal(t, float32(1), f.NutPotential)
}
