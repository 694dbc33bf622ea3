package poker

import (
	"math/rand"
	"testing"
)

func evalString(t *testing.T, s string) HandRank {
	t.Helper()
	return EvalIndices(MustParseCards(s))
}

func TestEval5Anchors(t *testing.T) {
	if got := evalString(t, "AsKsQsJsTs"); got != 7462 {
		t.Errorf("royal flush ranks %d, want 7462", got)
	}
	if got := evalString(t, "7s5d4h3c2s"); got != 1 {
		t.Errorf("worst high card ranks %d, want 1", got)
	}
}

func TestEval5Categories(t *testing.T) {
	tests := []struct {
		hand string
		want HandCategory
	}{
		{"AsKsQsJsTs", StraightFlush},
		{"5d4d3d2dAd", StraightFlush},
		{"AsAhAdAcKs", FourOfAKind},
		{"AsAhAdKcKs", FullHouse},
		{"AsQs9s5s3s", Flush},
		{"AsKdQhJcTs", Straight},
		{"5h4d3c2sAs", Straight},
		{"AsAhAd9c5s", ThreeOfAKind},
		{"AsAhKdKc9s", TwoPair},
		{"AsAhKdQc9s", OnePair},
		{"AsKdQh9c5s", HighCard},
	}

	for _, tt := range tests {
		if got := evalString(t, tt.hand).Category(); got != tt.want {
			t.Errorf("%s: category %v, want %v", tt.hand, got, tt.want)
		}
	}
}

// Categories are strictly ordered regardless of the hands within them.
func TestEval5CategoryMonotonic(t *testing.T) {
	ladder := []string{
		"AsKdQh9c5s", // high card
		"2s2hKdQc9s", // one pair
		"2s2h3d3c4s", // worst two pair
		"2s2h2dKcQs", // trips
		"5h4d3c2sAs", // wheel straight
		"As7s6s3s2s", // flush
		"2s2h2d3c3s", // worst full house
		"2s2h2d2cKs", // quads
		"6d5d4d3d2d", // straight flush
	}

	prev := HandRank(0)
	for _, hand := range ladder {
		rank := evalString(t, hand)
		if rank <= prev {
			t.Fatalf("%s ranks %d, not above previous %d", hand, rank, prev)
		}
		prev = rank
	}
}

func TestWheelIsLowestStraight(t *testing.T) {
	wheel := evalString(t, "Ad2d3d4d5h")
	sixHigh := evalString(t, "2h3d4d5d6d")
	if wheel.Category() != Straight {
		t.Fatalf("wheel is %v, want straight", wheel.Category())
	}
	if wheel >= sixHigh {
		t.Errorf("wheel %d should rank below six-high straight %d", wheel, sixHigh)
	}
}

func TestWheelStraightFlushBelowSixHigh(t *testing.T) {
	wheel := evalString(t, "Ad2d3d4d5d")
	sixHigh := evalString(t, "2d3d4d5d6d")
	if wheel >= sixHigh {
		t.Errorf("wheel straight flush %d should rank below six-high %d", wheel, sixHigh)
	}
	if wheel.Category() != StraightFlush {
		t.Errorf("wheel straight flush category %v", wheel.Category())
	}
}

// eval7Reference evaluates all 21 five-card subsets.
func eval7Reference(cards [7]Card) HandRank {
	best := HandRank(0)
	for _, combo := range fiveOfSeven {
		r := Eval5(cards[combo[0]], cards[combo[1]], cards[combo[2]], cards[combo[3]], cards[combo[4]])
		if r > best {
			best = r
		}
	}
	return best
}

func TestEval7TrickyHands(t *testing.T) {
	tests := []struct {
		name string
		hand string
	}{
		// Seven distinct ranks hiding a straight below the top five cards.
		{"buried straight", "AsKd9h8c7d6s5h"},
		{"buried wheel", "AsKd9h5c4d3s2h"},
		// Six-card suit where the straight flush is not the top five of the suit.
		{"low straight flush in long suit", "Ks6s5s4s3s2sAd"},
		{"wheel straight flush in long suit", "As5s4s3s2s9sKd"},
		{"flush beats straight", "As9s6s3s2sKdQd"},
		{"two trips make a full house", "AsAhAd9c9h9dKs"},
		{"double paired board", "AsAhKdKc9s9h2d"},
	}

	for _, tt := range tests {
		cards := MustParseCards(tt.hand)
		var hand [7]Card
		for i, idx := range cards {
			hand[i] = Deck[idx]
		}
		got := Eval7(hand[0], hand[1], hand[2], hand[3], hand[4], hand[5], hand[6])
		want := eval7Reference(hand)
		if got != want {
			t.Errorf("%s: Eval7 = %d, reference = %d", tt.name, got, want)
		}
	}
}

func TestEval7MatchesReferenceRandom(t *testing.T) {
	iterations := 50000
	if !testing.Short() {
		iterations = 1000000
	}

	rng := rand.New(rand.NewSource(1))
	var indices [52]CardIndex
	for i := range indices {
		indices[i] = CardIndex(i)
	}

	for n := 0; n < iterations; n++ {
		for i := 0; i < 7; i++ {
			j := i + rng.Intn(52-i)
			indices[i], indices[j] = indices[j], indices[i]
		}
		var hand [7]Card
		for i := 0; i < 7; i++ {
			hand[i] = Deck[indices[i]]
		}
		got := Eval7(hand[0], hand[1], hand[2], hand[3], hand[4], hand[5], hand[6])
		want := eval7Reference(hand)
		if got != want {
			t.Fatalf("iteration %d: Eval7(%v %v %v %v %v %v %v) = %d, reference = %d",
				n, indices[0], indices[1], indices[2], indices[3], indices[4], indices[5], indices[6], got, want)
		}
	}
}

func TestEval6MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var indices [52]CardIndex
	for i := range indices {
		indices[i] = CardIndex(i)
	}

	for n := 0; n < 20000; n++ {
		for i := 0; i < 6; i++ {
			j := i + rng.Intn(52-i)
			indices[i], indices[j] = indices[j], indices[i]
		}
		var hand [6]Card
		for i := 0; i < 6; i++ {
			hand[i] = Deck[indices[i]]
		}
		got := Eval6(hand[0], hand[1], hand[2], hand[3], hand[4], hand[5])

		best := HandRank(0)
		for omit := 0; omit < 6; omit++ {
			var five []Card
			for i, c := range hand {
				if i != omit {
					five = append(five, c)
				}
			}
			if r := Eval5(five[0], five[1], five[2], five[3], five[4]); r > best {
				best = r
			}
		}
		if got != best {
			t.Fatalf("iteration %d: Eval6 = %d, reference = %d", n, got, best)
		}
	}
}

func BenchmarkEval5(b *testing.B) {
	cards := MustParseCards("AsAhKdQc9s")
	var hand [5]Card
	for i, idx := range cards {
		hand[i] = Deck[idx]
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Eval5(hand[0], hand[1], hand[2], hand[3], hand[4])
	}
}

func BenchmarkEval7(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	hands := make([][7]Card, 1000)
	for i := range hands {
		var indices [52]CardIndex
		for j := range indices {
			indices[j] = CardIndex(j)
		}
		for j := 0; j < 7; j++ {
			k := j + rng.Intn(52-j)
			indices[j], indices[k] = indices[k], indices[j]
		}
		for j := 0; j < 7; j++ {
			hands[i][j] = Deck[indices[j]]
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		h := hands[i%len(hands)]
		Eval7(h[0], h[1], h[2], h[3], h[4], h[5], h[6])
	}
}
