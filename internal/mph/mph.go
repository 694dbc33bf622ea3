// Package mph builds perfect hash tables over small integer keysets. It is a
// thin seam over go-chd so the evaluator only deals in uint64 keys and
// collision-free indices.
package mph

import (
	"fmt"

	"github.com/opencoff/go-chd"
)

// Table maps a fixed keyset to distinct indices in [0, Range()).
type Table struct {
	c *chd.Chd
	n int
}

// Build constructs a perfect hash over the given keys. Keys must be
// distinct; lookups are only defined for keys that were added.
func Build(keys []uint64) (*Table, error) {
	b, err := chd.New()
	if err != nil {
		return nil, fmt.Errorf("mph: new builder: %w", err)
	}

	for _, k := range keys {
		if err := b.Add(k); err != nil {
			return nil, fmt.Errorf("mph: add key %d: %w", k, err)
		}
	}

	c, err := b.Freeze(0.9)
	if err != nil {
		return nil, fmt.Errorf("mph: freeze: %w", err)
	}
	return &Table{c: c, n: len(keys)}, nil
}

// Index returns the dense index for a key from the build set. The returned
// index is unique per key but only bounded by Range(), not Len(): go-chd's
// lookup table is sized by its internal load factor, so it is not minimal.
func (t *Table) Index(key uint64) int {
	return int(t.c.Find(key))
}

// Len returns the number of keys in the table.
func (t *Table) Len() int {
	return t.n
}

// Range returns the exclusive upper bound on values returned by Index.
// Callers sizing a dense array by key index must allocate Range() slots,
// not Len().
func (t *Table) Range() int {
	return t.c.Len()
}
