package object

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
)

// Pack index format (all integers big-endian):
//
//   - 0..3:   magic "SIDX"
//   - 4..7:   version (1)
//   - 8..11:  entry count
//   - fanout table: 256 x uint32 cumulative counts keyed by the first
//     byte of the raw hash
//   - entries sorted by hash: 32-byte raw hash + uint64 pack offset
//   - 32-byte raw pack checksum
//   - 32-byte SHA-256 over all preceding bytes

const (
	packIndexHeaderSize  = 12
	packIndexEntrySize   = sha256.Size + 8
	supportedIdxVersion  = 1
	packIndexFanoutWords = 256
)

var packIndexMagic = [4]byte{'S', 'I', 'D', 'X'}

// PackIndexEntry maps an object hash to its entry offset within a pack.
type PackIndexEntry struct {
	Hash   Hash
	Offset uint64
}

func normalizePackIndexEntries(entries []PackIndexEntry) ([]PackIndexEntry, error) {
	out := make([]PackIndexEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })

	for i := 1; i < len(out); i++ {
		if out[i].Hash == out[i-1].Hash {
			return nil, fmt.Errorf("duplicate index entry for hash %s", out[i].Hash)
		}
	}
	return out, nil
}

func hashHexToBytes(h Hash) ([]byte, error) {
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return nil, fmt.Errorf("malformed hash %q: %w", h, err)
	}
	if len(raw) != sha256.Size {
		return nil, fmt.Errorf("hash %q: want %d raw bytes, got %d", h, sha256.Size, len(raw))
	}
	return raw, nil
}

func buildPackIndexFanout(entries []PackIndexEntry) ([packIndexFanoutWords]uint32, error) {
	var fanout [packIndexFanoutWords]uint32
	for _, e := range entries {
		raw, err := hashHexToBytes(e.Hash)
		if err != nil {
			return fanout, err
		}
		fanout[raw[0]]++
	}
	var running uint32
	for i := range fanout {
		running += fanout[i]
		fanout[i] = running
	}
	return fanout, nil
}

// WritePackIndex writes a pack index for the given entries and pack
// checksum, returning the index's own trailing checksum.
func WritePackIndex(w io.Writer, entries []PackIndexEntry, packChecksum Hash) (Hash, error) {
	sorted, err := normalizePackIndexEntries(entries)
	if err != nil {
		return "", fmt.Errorf("write pack index: %w", err)
	}
	fanout, err := buildPackIndexFanout(sorted)
	if err != nil {
		return "", fmt.Errorf("write pack index: %w", err)
	}
	checksumRaw, err := hashHexToBytes(packChecksum)
	if err != nil {
		return "", fmt.Errorf("write pack index: pack checksum: %w", err)
	}

	hasher := sha256.New()
	out := io.MultiWriter(w, hasher)

	header := make([]byte, packIndexHeaderSize)
	copy(header[:4], packIndexMagic[:])
	binary.BigEndian.PutUint32(header[4:8], supportedIdxVersion)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(sorted)))
	if _, err := out.Write(header); err != nil {
		return "", fmt.Errorf("write pack index header: %w", err)
	}

	fanoutBuf := make([]byte, 4*packIndexFanoutWords)
	for i, v := range fanout {
		binary.BigEndian.PutUint32(fanoutBuf[i*4:], v)
	}
	if _, err := out.Write(fanoutBuf); err != nil {
		return "", fmt.Errorf("write pack index fanout: %w", err)
	}

	entryBuf := make([]byte, packIndexEntrySize)
	for _, e := range sorted {
		raw, err := hashHexToBytes(e.Hash)
		if err != nil {
			return "", fmt.Errorf("write pack index: %w", err)
		}
		copy(entryBuf[:sha256.Size], raw)
		binary.BigEndian.PutUint64(entryBuf[sha256.Size:], e.Offset)
		if _, err := out.Write(entryBuf); err != nil {
			return "", fmt.Errorf("write pack index entry: %w", err)
		}
	}

	if _, err := out.Write(checksumRaw); err != nil {
		return "", fmt.Errorf("write pack index checksum: %w", err)
	}

	sum := hasher.Sum(nil)
	if _, err := w.Write(sum); err != nil {
		return "", fmt.Errorf("write pack index trailer: %w", err)
	}
	return Hash(hex.EncodeToString(sum)), nil
}
