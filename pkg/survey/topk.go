package survey

import (
	"github.com/odvcencio/surveyor/pkg/object"
)

// LargeItem is one retained entry in a LargeItemVec. Identity is the object
// id; the ranking key is Size, whose meaning (bytes, parent count, entry
// count) depends on the owning tracker.
type LargeItem struct {
	Size               uint64
	ID                 object.Hash
	ContainingCommitID object.Hash

	// DisplayName is filled by the optional enrichment pass; empty until
	// then and on resolution failure.
	DisplayName string

	name []byte
}

// Name returns the path recorded when the item was discovered, empty for
// objects with no path (commits, root trees).
func (it *LargeItem) Name() string {
	return string(it.name)
}

// LargeItemVec tracks the K largest items offered to it, ordered descending
// by size, dense from index 0. Equal-size items keep discovery order, so an
// item already retained is never displaced by a later equal-size candidate.
type LargeItemVec struct {
	kind  string
	items []LargeItem
	n     int
}

// NewLargeItemVec creates a tracker with the given capacity. Capacity 0 or
// less disables the dimension: the returned tracker is nil and Offer on it
// is a no-op.
func NewLargeItemVec(kind string, capacity int) *LargeItemVec {
	if capacity <= 0 {
		return nil
	}
	return &LargeItemVec{
		kind:  kind,
		items: make([]LargeItem, capacity),
	}
}

// Kind names the tracked dimension, e.g. "largest_blobs_by_size".
func (v *LargeItemVec) Kind() string {
	if v == nil {
		return ""
	}
	return v.kind
}

// Items returns the populated slots in rank order. The slice aliases the
// tracker's storage and is only valid until the next Offer.
func (v *LargeItemVec) Items() []LargeItem {
	if v == nil {
		return nil
	}
	return v.items[:v.n]
}

// Offer considers one candidate. When the tracker is full, candidates not
// strictly larger than the smallest retained size are rejected in O(1).
// Otherwise the candidate is inserted at the first position ranked below it,
// shifting later items down and discarding the overflow; the discarded
// slot's name buffer is reused for the new entry.
func (v *LargeItemVec) Offer(size uint64, id object.Hash, name string, containing object.Hash) {
	if v == nil {
		return
	}

	full := v.n == len(v.items)
	if full && size <= v.items[v.n-1].Size {
		return
	}

	pos := v.n
	for k := 0; k < v.n; k++ {
		if v.items[k].Size < size {
			pos = k
			break
		}
	}
	if pos == len(v.items) {
		return
	}

	end := v.n
	if full {
		end = v.n - 1
	} else {
		v.n++
	}

	buf := v.items[end].name[:0]
	copy(v.items[pos+1:end+1], v.items[pos:end])
	v.items[pos] = LargeItem{
		Size:               size,
		ID:                 id,
		ContainingCommitID: containing,
		name:               append(buf, name...),
	}
}
