package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// Read-cache bounds. Objects larger than maxCachedObjectSize are never
	// cached so one oversized blob cannot dominate the budget.
	defaultCacheMax     = 4096
	maxCachedObjectSize = 1 << 20

	// Alternate stores may chain; stop following after this many hops so a
	// cyclic alternates file cannot recurse forever.
	maxAlternateDepth = 4
)

type cachedObject struct {
	objType  ObjectType
	data     []byte
	diskSize uint64
}

// Store is a content-addressed object store with a 2-character fan-out
// directory layout (objects/ab/cdef0123...), pack files under objects/pack/,
// a bounded in-memory read cache, and an optional chained alternate store
// named by an objects/alternates file.
type Store struct {
	root      string
	alternate *Store

	cache      map[Hash]cachedObject
	cacheOrder []Hash
	cacheMax   int
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write. If objects/alternates
// exists, its first non-comment line is opened as a read-only fallback
// store.
func NewStore(root string) *Store {
	return newStoreAtDepth(root, 0)
}

func newStoreAtDepth(root string, depth int) *Store {
	s := &Store{
		root:     root,
		cache:    make(map[Hash]cachedObject),
		cacheMax: defaultCacheMax,
	}
	if depth < maxAlternateDepth {
		if alt := readAlternatePath(root); alt != "" {
			s.alternate = newStoreAtDepth(alt, depth+1)
		}
	}
	return s
}

func readAlternatePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "objects", "alternates"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(root, "objects", line)
		}
		return line
	}
	return ""
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store (or its alternate) contains an object with
// the given hash.
func (s *Store) Has(h Hash) bool {
	if len(h) < 3 {
		return false
	}
	if _, ok := s.cache[h]; ok {
		return true
	}
	if _, err := os.Stat(s.objectPath(h)); err == nil {
		return true
	}
	if packed, err := s.packedHashSet(); err == nil {
		if _, ok := packed[h]; ok {
			return true
		}
	}
	if s.alternate != nil {
		return s.alternate.Has(h)
	}
	return false
}

// Write stores an object and returns its content hash. The on-disk format
// is "type len\0content". Writes are atomic: data is written to a temp
// file and then renamed into place.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	raw := makeObjectEnvelope(objType, data)

	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	// Atomic write via temp + rename.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	dest := s.objectPath(h)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
// Resolution order: read cache, loose file, pack files, alternate store.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	objType, data, _, err := s.resolve(h)
	return objType, data, err
}

// Stat resolves object metadata without retaining the content: the object's
// type, logical size, stored size, and which storage tier satisfied the
// lookup. Returns an error wrapping os.ErrNotExist when the object cannot
// be located anywhere.
func (s *Store) Stat(h Hash) (*ObjectInfo, error) {
	_, _, info, err := s.resolve(h)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Store) resolve(h Hash) (ObjectType, []byte, *ObjectInfo, error) {
	if len(h) < 3 {
		return "", nil, nil, fmt.Errorf("object read %q: malformed hash", h)
	}

	if c, ok := s.cache[h]; ok {
		info := &ObjectInfo{
			Type:     c.objType,
			Size:     uint64(len(c.data)),
			DiskSize: c.diskSize,
			Tier:     TierCached,
		}
		return c.objType, c.data, info, nil
	}

	objType, data, diskSize, err := s.readLoose(h)
	if err == nil {
		s.cacheAdd(h, objType, data, diskSize)
		info := &ObjectInfo{
			Type:     objType,
			Size:     uint64(len(data)),
			DiskSize: diskSize,
			Tier:     TierLoose,
		}
		return objType, data, info, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", nil, nil, err
	}

	objType, data, diskSize, err = s.readFromPacks(h)
	if err == nil {
		s.cacheAdd(h, objType, data, diskSize)
		info := &ObjectInfo{
			Type:     objType,
			Size:     uint64(len(data)),
			DiskSize: diskSize,
			Tier:     TierPacked,
		}
		return objType, data, info, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", nil, nil, err
	}

	if s.alternate != nil {
		objType, data, info, altErr := s.alternate.resolve(h)
		if altErr == nil {
			// Report the alternate tier regardless of where the chained
			// store found the bytes.
			info = &ObjectInfo{
				Type:     info.Type,
				Size:     info.Size,
				DiskSize: info.DiskSize,
				Tier:     TierAlternate,
			}
			return objType, data, info, nil
		}
	}

	return "", nil, nil, fmt.Errorf("object read %s: %w", h, os.ErrNotExist)
}

// readLoose reads a loose object file and parses its envelope. The third
// return value is the on-disk size of the loose file.
func (s *Store) readLoose(h Hash) (ObjectType, []byte, uint64, error) {
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		return "", nil, 0, err
	}

	objType, content, err := parseObjectEnvelope(raw, h)
	if err != nil {
		return "", nil, 0, err
	}
	return objType, content, uint64(len(raw)), nil
}

func makeObjectEnvelope(objType ObjectType, data []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	out := make([]byte, 0, len(header)+len(data))
	out = append(out, header...)
	out = append(out, data...)
	return out
}

// parseObjectEnvelope splits "type len\0content" and validates the length
// field against the actual content.
func parseObjectEnvelope(raw []byte, h Hash) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: invalid format (no NUL)", h)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: invalid header %q", h, header)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: invalid length %q: %w", h, parts[1], err)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d)", h, length, len(content))
	}

	return objType, content, nil
}

func (s *Store) cacheAdd(h Hash, objType ObjectType, data []byte, diskSize uint64) {
	if len(data) > maxCachedObjectSize {
		return
	}
	if _, ok := s.cache[h]; ok {
		return
	}
	if len(s.cache) >= s.cacheMax {
		oldest := s.cacheOrder[0]
		s.cacheOrder = s.cacheOrder[1:]
		delete(s.cache, oldest)
	}
	s.cache[h] = cachedObject{objType: objType, data: data, diskSize: diskSize}
	s.cacheOrder = append(s.cacheOrder, h)
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteTag serializes and stores a TagObj.
func (s *Store) WriteTag(t *TagObj) (Hash, error) {
	return s.Write(TypeTag, MarshalTag(t))
}

// ReadTag reads and deserializes a TagObj.
func (s *Store) ReadTag(h Hash) (*TagObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTag {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTag)
	}
	return UnmarshalTag(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTree)
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}
