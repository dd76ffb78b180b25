package object

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// PackEntry represents one object entry in a pack stream.
type PackEntry struct {
	Type   PackObjectType
	Size   uint64
	Offset uint64
	Data   []byte

	// StoredSize is the number of pack bytes the entry occupies: header
	// bytes plus the compressed payload.
	StoredSize uint64
}

// PackFile is the decoded content of a full pack stream.
type PackFile struct {
	Header   PackHeader
	Entries  []PackEntry
	Checksum Hash
}

// ReadPack parses a full pack file byte slice, verifies the trailer
// checksum, and returns decoded entries.
func ReadPack(data []byte) (*PackFile, error) {
	if len(data) < packHeaderSize+sha256.Size {
		return nil, fmt.Errorf("pack too short: %d", len(data))
	}

	payload := data[:len(data)-sha256.Size]
	trailer := data[len(data)-sha256.Size:]

	sum := sha256.Sum256(payload)
	if !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("pack checksum mismatch")
	}

	header, err := UnmarshalPackHeader(payload[:packHeaderSize])
	if err != nil {
		return nil, err
	}

	offset := uint64(packHeaderSize)
	entries := make([]PackEntry, 0, header.NumObjects)
	for i := uint32(0); i < header.NumObjects; i++ {
		entry, err := decodePackEntryAt(payload, offset)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, *entry)
		offset += entry.StoredSize
	}

	if offset != uint64(len(payload)) {
		return nil, fmt.Errorf("pack has trailing undecoded bytes: %d", uint64(len(payload))-offset)
	}

	return &PackFile{
		Header:   *header,
		Entries:  entries,
		Checksum: Hash(hex.EncodeToString(trailer)),
	}, nil
}

// ReadPackFromReader reads a complete pack stream from r and delegates to
// ReadPack for decode and verification.
func ReadPackFromReader(r io.Reader) (*PackFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pack stream: %w", err)
	}
	return ReadPack(data)
}

// decodePackEntryAt decodes a single entry starting at offset within the
// pack payload (header + entries, no trailer). Random access via an index
// offset lands here without decoding the rest of the pack.
func decodePackEntryAt(payload []byte, offset uint64) (*PackEntry, error) {
	if offset >= uint64(len(payload)) {
		return nil, fmt.Errorf("entry offset %d beyond pack payload", offset)
	}

	objType, size, headerLen, err := decodePackEntryHeader(payload[offset:])
	if err != nil {
		return nil, err
	}
	if _, ok := objectTypeForPack(objType); !ok {
		return nil, fmt.Errorf("unsupported packed object type %d", objType)
	}

	body := payload[offset+uint64(headerLen):]
	if len(body) == 0 {
		return nil, fmt.Errorf("missing compressed payload")
	}

	sub := bytes.NewReader(body)
	zr, err := zlib.NewReader(sub)
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		_ = zr.Close()
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("close zlib stream: %w", err)
	}
	if uint64(len(raw)) != size {
		return nil, fmt.Errorf("size mismatch header=%d decoded=%d", size, len(raw))
	}

	compressedLen := uint64(len(body) - sub.Len())
	return &PackEntry{
		Type:       objType,
		Size:       size,
		Offset:     offset,
		Data:       raw,
		StoredSize: uint64(headerLen) + compressedLen,
	}, nil
}
