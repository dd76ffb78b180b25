package object

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestHashBytesDeterminism(t *testing.T) {
	data := []byte("hello world")
	h1 := HashBytes(data)
	h2 := HashBytes(data)
	if h1 != h2 {
		t.Errorf("HashBytes not deterministic: %q != %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("Hash length: got %d, want 64", len(h1))
	}
}

func TestHashObjectEnvelope(t *testing.T) {
	data := []byte("hello")
	h1 := HashObject(TypeBlob, data)
	h2 := HashBytes(data)
	if h1 == h2 {
		t.Error("HashObject should differ from HashBytes due to envelope")
	}
	if h3 := HashObject(TypeCommit, data); h1 == h3 {
		t.Error("Different types should produce different hashes")
	}
}

func TestStoreWriteRead(t *testing.T) {
	s := tempStore(t)
	data := []byte("hello world")
	h, err := s.Write(TypeBlob, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	gotType, gotData, err := s.Read(h)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotType != TypeBlob {
		t.Errorf("Type: got %q, want %q", gotType, TypeBlob)
	}
	if !bytes.Equal(gotData, data) {
		t.Errorf("Data: got %q, want %q", gotData, data)
	}
}

func TestStoreHas(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(TypeBlob, []byte("exists"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.Has(h) {
		t.Error("Has returned false for existing object")
	}
	if s.Has(Hash("0000000000000000000000000000000000000000000000000000000000000000")) {
		t.Error("Has returned true for non-existing object")
	}
}

func TestStoreStatLooseThenCached(t *testing.T) {
	s := tempStore(t)
	data := []byte("tier test")
	h, err := s.Write(TypeBlob, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := s.Stat(h)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Tier != TierLoose {
		t.Errorf("first Stat tier: got %v, want %v", info.Tier, TierLoose)
	}
	if info.Type != TypeBlob {
		t.Errorf("Stat type: got %q, want %q", info.Type, TypeBlob)
	}
	if info.Size != uint64(len(data)) {
		t.Errorf("Stat size: got %d, want %d", info.Size, len(data))
	}
	if info.DiskSize <= info.Size {
		t.Errorf("Stat disk size %d should exceed content size %d (envelope header)", info.DiskSize, info.Size)
	}

	// The first resolve populates the read cache.
	info2, err := s.Stat(h)
	if err != nil {
		t.Fatalf("second Stat: %v", err)
	}
	if info2.Tier != TierCached {
		t.Errorf("second Stat tier: got %v, want %v", info2.Tier, TierCached)
	}
	if info2.Size != info.Size || info2.DiskSize != info.DiskSize {
		t.Errorf("cached sizes diverge: %+v vs %+v", info2, info)
	}
}

func TestStoreStatMissing(t *testing.T) {
	s := tempStore(t)
	missing := Hash("1111111111111111111111111111111111111111111111111111111111111111")
	if _, err := s.Stat(missing); err == nil {
		t.Fatal("Stat of missing object should fail")
	} else if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Stat error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestStoreAlternate(t *testing.T) {
	altDir := t.TempDir()
	alt := NewStore(altDir)
	h, err := alt.Write(TypeBlob, []byte("shared history"))
	if err != nil {
		t.Fatalf("Write to alternate: %v", err)
	}

	mainDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(mainDir, "objects"), 0o755); err != nil {
		t.Fatalf("mkdir objects: %v", err)
	}
	altFile := filepath.Join(mainDir, "objects", "alternates")
	if err := os.WriteFile(altFile, []byte("# fallback store\n"+altDir+"\n"), 0o644); err != nil {
		t.Fatalf("write alternates: %v", err)
	}

	s := NewStore(mainDir)
	if !s.Has(h) {
		t.Fatal("Has should find object through the alternate")
	}
	info, err := s.Stat(h)
	if err != nil {
		t.Fatalf("Stat through alternate: %v", err)
	}
	if info.Tier != TierAlternate {
		t.Errorf("tier: got %v, want %v", info.Tier, TierAlternate)
	}

	_, data, err := s.Read(h)
	if err != nil {
		t.Fatalf("Read through alternate: %v", err)
	}
	if string(data) != "shared history" {
		t.Errorf("alternate content: got %q", data)
	}
}

func TestStoreTypedRoundTrips(t *testing.T) {
	s := tempStore(t)

	blobHash, err := s.WriteBlob(&Blob{Data: []byte("file contents")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	blob, err := s.ReadBlob(blobHash)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(blob.Data) != "file contents" {
		t.Errorf("blob data: got %q", blob.Data)
	}

	tree := &TreeObj{Entries: []TreeEntry{
		{Name: "a.txt", BlobHash: blobHash},
		{Name: "sub", IsDir: true, SubtreeHash: blobHash},
	}}
	treeHash, err := s.WriteTree(tree)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	gotTree, err := s.ReadTree(treeHash)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if len(gotTree.Entries) != 2 {
		t.Fatalf("tree entries: got %d, want 2", len(gotTree.Entries))
	}

	commit := &CommitObj{
		TreeHash:  treeHash,
		Author:    "alice",
		Timestamp: 1700000000,
		Message:   "add files",
	}
	commitHash, err := s.WriteCommit(commit)
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	gotCommit, err := s.ReadCommit(commitHash)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if gotCommit.TreeHash != treeHash {
		t.Errorf("commit tree: got %q, want %q", gotCommit.TreeHash, treeHash)
	}

	// Type mismatch must be reported, not silently decoded.
	if _, err := s.ReadCommit(blobHash); err == nil {
		t.Error("ReadCommit of a blob should fail")
	}
}
