package object

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// PackIndex is the in-memory form of a pack index file.
type PackIndex struct {
	fanout        [packIndexFanoutWords]uint32
	entries       []PackIndexEntry
	PackChecksum  Hash
	IndexChecksum Hash
}

// Entries returns a copy of all index entries in lexicographic hash order.
func (idx *PackIndex) Entries() []PackIndexEntry {
	out := make([]PackIndexEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Find performs fanout-bounded binary search for a hash in the index.
func (idx *PackIndex) Find(h Hash) (PackIndexEntry, bool) {
	raw, err := hashHexToBytes(h)
	if err != nil {
		return PackIndexEntry{}, false
	}

	bucket := int(raw[0])
	start := uint32(0)
	if bucket > 0 {
		start = idx.fanout[bucket-1]
	}
	end := idx.fanout[bucket]
	if end <= start {
		return PackIndexEntry{}, false
	}

	lo := int(start)
	hi := int(end)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if idx.entries[mid].Hash < h {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < int(end) && idx.entries[lo].Hash == h {
		return idx.entries[lo], true
	}
	return PackIndexEntry{}, false
}

// ReadPackIndexFromReader parses a pack index stream.
func ReadPackIndexFromReader(r io.Reader) (*PackIndex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pack index stream: %w", err)
	}
	return ReadPackIndex(data)
}

// ReadPackIndex parses and validates a pack index file.
func ReadPackIndex(data []byte) (*PackIndex, error) {
	minLen := packIndexHeaderSize + 4*packIndexFanoutWords + 2*sha256.Size
	if len(data) < minLen {
		return nil, fmt.Errorf("pack index too short: %d", len(data))
	}
	if string(data[:4]) != string(packIndexMagic[:]) {
		return nil, fmt.Errorf("invalid pack index magic %q", data[:4])
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != supportedIdxVersion {
		return nil, fmt.Errorf("unsupported pack index version %d", version)
	}
	count := binary.BigEndian.Uint32(data[8:12])

	trailer := data[len(data)-sha256.Size:]
	sum := sha256.Sum256(data[:len(data)-sha256.Size])
	if !bytes.Equal(trailer, sum[:]) {
		return nil, fmt.Errorf("pack index checksum mismatch")
	}

	if minLen+int(count)*packIndexEntrySize != len(data) {
		return nil, fmt.Errorf("pack index size mismatch: %d entries in %d bytes", count, len(data))
	}

	var fanout [packIndexFanoutWords]uint32
	cursor := packIndexHeaderSize
	for i := range fanout {
		fanout[i] = binary.BigEndian.Uint32(data[cursor:])
		cursor += 4
	}
	if fanout[packIndexFanoutWords-1] != count {
		return nil, fmt.Errorf("pack index fanout total %d does not match entry count %d", fanout[packIndexFanoutWords-1], count)
	}

	entries := make([]PackIndexEntry, count)
	for i := range entries {
		hashRaw := data[cursor : cursor+sha256.Size]
		offset := binary.BigEndian.Uint64(data[cursor+sha256.Size:])
		cursor += packIndexEntrySize
		entries[i] = PackIndexEntry{
			Hash:   Hash(hex.EncodeToString(hashRaw)),
			Offset: offset,
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Hash <= entries[i-1].Hash {
			return nil, fmt.Errorf("pack index entries not strictly sorted at %d", i)
		}
	}

	packChecksumRaw := data[cursor : cursor+sha256.Size]

	return &PackIndex{
		fanout:        fanout,
		entries:       entries,
		PackChecksum:  Hash(hex.EncodeToString(packChecksumRaw)),
		IndexChecksum: Hash(hex.EncodeToString(trailer)),
	}, nil
}
