package poker

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/lox/handbucket/internal/mph"
)

// The evaluator uses three lookup tables in the style of Cactus Kev's
// five-card evaluator. Each table stores a descending class value in
// [1..7462] where 1 is the royal flush; Eval5 converts to the ascending
// HandRank space by returning 7463 - value.
//
//	flushRanks[q]  - q is the 13-bit rank bitmask of five suited cards
//	uniqueRanks[q] - q is the rank bitmask of five distinct, unsuited ranks
//	pairedValues   - table for hands with repeated ranks, indexed by a
//	                 perfect hash over the product of rank primes; slots no
//	                 key hashes to hold 0
//
// The original tables of this evaluator family ship as ~400 kB of static
// arrays. They are fully determined by the hand ordering, so we build them
// once at init by direct enumeration of the 7462 classes instead of carrying
// the blobs.
var (
	flushRanks   [8192]uint16
	uniqueRanks  [8192]uint16
	pairedTable  *mph.Table
	pairedValues []uint16
)

const (
	wheelMask   = 0x100F // A-2-3-4-5
	pairedCount = 4888   // quads + full houses + trips + two pair + one pair
)

func init() {
	buildRankTables()
}

// straightMasksByStrength lists the ten straight rank masks from the
// ace-high broadway down to the wheel.
func straightMasksByStrength() []uint32 {
	masks := make([]uint32, 0, 10)
	for high := int(Ace); high >= int(Six); high-- {
		masks = append(masks, uint32(0x1F)<<(high-4))
	}
	return append(masks, wheelMask)
}

func buildRankTables() {
	straights := straightMasksByStrength()
	isStraight := make(map[uint32]bool, len(straights))
	for i, m := range straights {
		isStraight[m] = true
		flushRanks[m] = uint16(1 + i)     // straight flushes: 1..10
		uniqueRanks[m] = uint16(1600 + i) // straights: 1600..1609
	}

	// All remaining five-distinct-rank sets. Comparing two such sets as
	// integers orders them exactly like comparing their sorted ranks from the
	// top down, so a numeric sort gives the strength order directly.
	masks := make([]uint32, 0, 1277)
	for m := uint32(0); m < 8192; m++ {
		if bits.OnesCount32(m) == 5 && !isStraight[m] {
			masks = append(masks, m)
		}
	}
	sort.Slice(masks, func(i, j int) bool { return masks[i] > masks[j] })
	for i, m := range masks {
		flushRanks[m] = uint16(323 + i)   // flushes: 323..1599
		uniqueRanks[m] = uint16(6186 + i) // high cards: 6186..7462
	}

	buildPairedTable()
}

// buildPairedTable enumerates every hand class with a repeated rank in
// strength order and keys it by its prime product.
func buildPairedTable() {
	keys := make([]uint64, 0, pairedCount)
	vals := make([]uint16, 0, pairedCount)
	value := uint16(11)
	add := func(product uint64) {
		keys = append(keys, product)
		vals = append(vals, value)
		value++
	}

	// Four of a kind: 11..166.
	for q := int(Ace); q >= 0; q-- {
		for k := int(Ace); k >= 0; k-- {
			if k == q {
				continue
			}
			add(primePow(q, 4) * primePow(k, 1))
		}
	}

	// Full houses: 167..322.
	for t := int(Ace); t >= 0; t-- {
		for p := int(Ace); p >= 0; p-- {
			if p == t {
				continue
			}
			add(primePow(t, 3) * primePow(p, 2))
		}
	}

	// Three of a kind: 1610..2467.
	value = 1610
	for t := int(Ace); t >= 0; t-- {
		for k1 := int(Ace); k1 >= 0; k1-- {
			if k1 == t {
				continue
			}
			for k2 := k1 - 1; k2 >= 0; k2-- {
				if k2 == t {
					continue
				}
				add(primePow(t, 3) * primePow(k1, 1) * primePow(k2, 1))
			}
		}
	}

	// Two pair: 2468..3325.
	for p1 := int(Ace); p1 >= 0; p1-- {
		for p2 := p1 - 1; p2 >= 0; p2-- {
			for k := int(Ace); k >= 0; k-- {
				if k == p1 || k == p2 {
					continue
				}
				add(primePow(p1, 2) * primePow(p2, 2) * primePow(k, 1))
			}
		}
	}

	// One pair: 3326..6185.
	for p := int(Ace); p >= 0; p-- {
		for k1 := int(Ace); k1 >= 0; k1-- {
			if k1 == p {
				continue
			}
			for k2 := k1 - 1; k2 >= 0; k2-- {
				if k2 == p {
					continue
				}
				for k3 := k2 - 1; k3 >= 0; k3-- {
					if k3 == p {
						continue
					}
					add(primePow(p, 2) * primePow(k1, 1) * primePow(k2, 1) * primePow(k3, 1))
				}
			}
		}
	}

	if len(keys) != pairedCount {
		panic(fmt.Sprintf("poker: enumerated %d paired classes, want %d", len(keys), pairedCount))
	}

	table, err := mph.Build(keys)
	if err != nil {
		panic(fmt.Sprintf("poker: build paired hash: %v", err))
	}
	pairedTable = table
	pairedValues = make([]uint16, table.Range())
	for i, k := range keys {
		pairedValues[table.Index(k)] = vals[i]
	}
}

func primePow(rank, n int) uint64 {
	p := uint64(1)
	for i := 0; i < n; i++ {
		p *= uint64(rankPrimes[rank])
	}
	return p
}
