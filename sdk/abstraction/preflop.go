package abstraction

import "github.com/lox/handbucket/poker"

// PreflopBucketCount is the number of canonical starting-hand classes: 13
// pocket pairs, 78 suited combos, and 78 offsuit combos.
const PreflopBucketCount = 169

// PreflopBucket maps two hole cards to their canonical starting-hand class
// in [0..168]. Pocket pairs occupy 0..12 by rank, suited non-pairs 13..90,
// and offsuit non-pairs 91..168. The mapping is a pure function of the card
// indices; no centroid store is involved.
func PreflopBucket(c0, c1 poker.CardIndex) int {
	hi, lo := int(c0.Rank()), int(c1.Rank())
	if hi < lo {
		hi, lo = lo, hi
	}
	if hi == lo {
		return hi
	}
	idx := hi*(hi-1)/2 + lo
	if c0.Suit() == c1.Suit() {
		return 13 + idx
	}
	return 91 + idx
}
