package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/surveyor/pkg/object"
)

func itemID(n byte) object.Hash {
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = 'a' + n
	}
	return object.Hash(raw)
}

func TestLargeItemVecRetainsLargestDescending(t *testing.T) {
	v := NewLargeItemVec("largest_blobs_by_size_bytes", 3)
	require.NotNil(t, v)
	assert.Equal(t, "largest_blobs_by_size_bytes", v.Kind())

	for i, size := range []uint64{10, 500, 30, 999, 1, 200} {
		v.Offer(size, itemID(byte(i)), "", "")
	}

	items := v.Items()
	require.Len(t, items, 3)
	assert.Equal(t, uint64(999), items[0].Size)
	assert.Equal(t, uint64(500), items[1].Size)
	assert.Equal(t, uint64(200), items[2].Size)
	assert.Equal(t, itemID(3), items[0].ID)
}

func TestLargeItemVecTiesKeepDiscoveryOrder(t *testing.T) {
	v := NewLargeItemVec("k", 4)

	v.Offer(100, itemID(0), "", "")
	v.Offer(100, itemID(1), "", "")
	v.Offer(200, itemID(2), "", "")
	v.Offer(100, itemID(3), "", "")

	items := v.Items()
	require.Len(t, items, 4)
	assert.Equal(t, itemID(2), items[0].ID)
	assert.Equal(t, itemID(0), items[1].ID)
	assert.Equal(t, itemID(1), items[2].ID)
	assert.Equal(t, itemID(3), items[3].ID)
}

func TestLargeItemVecFullRejectsEqualToMinimum(t *testing.T) {
	v := NewLargeItemVec("k", 2)
	v.Offer(10, itemID(0), "", "")
	v.Offer(20, itemID(1), "", "")

	// Equal to the smallest retained size: the earlier item stays.
	v.Offer(10, itemID(2), "", "")
	items := v.Items()
	require.Len(t, items, 2)
	assert.Equal(t, itemID(0), items[1].ID)

	// Strictly smaller: rejected outright.
	v.Offer(5, itemID(3), "", "")
	assert.Equal(t, itemID(0), v.Items()[1].ID)

	// Strictly larger: displaces the minimum.
	v.Offer(15, itemID(4), "", "")
	items = v.Items()
	assert.Equal(t, uint64(20), items[0].Size)
	assert.Equal(t, uint64(15), items[1].Size)
}

func TestLargeItemVecCapacityOne(t *testing.T) {
	v := NewLargeItemVec("k", 1)
	v.Offer(10, itemID(0), "first", "")
	v.Offer(30, itemID(1), "second", "")
	v.Offer(20, itemID(2), "third", "")

	items := v.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint64(30), items[0].Size)
	assert.Equal(t, "second", items[0].Name())
}

func TestLargeItemVecDisabled(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		v := NewLargeItemVec("k", capacity)
		assert.Nil(t, v)
		v.Offer(10, itemID(0), "", "")
		assert.Empty(t, v.Items())
		assert.Equal(t, "", v.Kind())
	}
}

func TestLargeItemVecNamesSurviveShifts(t *testing.T) {
	v := NewLargeItemVec("k", 3)
	v.Offer(10, itemID(0), "small.txt", itemID(7))
	v.Offer(30, itemID(1), "big.txt", itemID(7))
	v.Offer(20, itemID(2), "mid.txt", itemID(7))

	items := v.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "big.txt", items[0].Name())
	assert.Equal(t, "mid.txt", items[1].Name())
	assert.Equal(t, "small.txt", items[2].Name())
	assert.Equal(t, itemID(7), items[0].ContainingCommitID)

	// Insert in the middle of a full tracker and make sure no name leaks
	// between slots when the tail is reused.
	v.Offer(25, itemID(3), "newer.txt", itemID(7))
	items = v.Items()
	assert.Equal(t, "big.txt", items[0].Name())
	assert.Equal(t, "newer.txt", items[1].Name())
	assert.Equal(t, "mid.txt", items[2].Name())
}
