package rewrite

import (
	"fmt"
	"sort"

	"newsdigest/internal/domain/entity"
)

// align maps parsed items onto a batch of n articles starting at offset in the
// caller's list.
//
// When every item echoes an id, items with ids outside 1..n are dropped and the
// rest must be distinct; they are ordered by id and positioned by it, so missing
// articles are simply absent. Otherwise the item count must equal n and items are
// positioned in order. Anything else is ErrMisaligned. Result ids are
// 1-based positions in the caller's list.
func align(items []parsedItem, n, offset int) ([]entity.RewrittenItem, error) {
	if byID, ok := alignByID(items, n, offset); ok {
		return byID, nil
	}

	if len(items) != n {
		return nil, fmt.Errorf("%w: got %d items for %d articles", ErrMisaligned, len(items), n)
	}
	out := make([]entity.RewrittenItem, len(items))
	for i, it := range items {
		out[i] = entity.RewrittenItem{
			ID:       offset + i + 1,
			Heading:  it.Heading,
			Summary:  it.Summary,
			Position: offset + i,
		}
	}
	return out, nil
}

func alignByID(items []parsedItem, n, offset int) ([]entity.RewrittenItem, bool) {
	seen := make(map[int]bool, len(items))
	out := make([]entity.RewrittenItem, 0, len(items))
	for _, it := range items {
		if it.ID == 0 {
			return nil, false
		}
		if it.ID > n {
			continue
		}
		if seen[it.ID] {
			return nil, false
		}
		seen[it.ID] = true
		out = append(out, entity.RewrittenItem{
			ID:       offset + it.ID,
			Heading:  it.Heading,
			Summary:  it.Summary,
			Position: offset + it.ID - 1,
		})
	}
	if len(out) == 0 {
		return nil, false
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, true
}
