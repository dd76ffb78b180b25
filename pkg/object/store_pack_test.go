package object

import (
	"os"
	"testing"
)

func TestGCPacksLooseObjects(t *testing.T) {
	s := tempStore(t)

	blobHash, err := s.Write(TypeBlob, []byte("pack me"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	commitHash, err := s.WriteCommit(&CommitObj{
		TreeHash:  "0000000000000000000000000000000000000000000000000000000000000000",
		Author:    "gc",
		Timestamp: 1,
		Message:   "m",
	})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}

	summary, err := s.GC()
	if err != nil {
		t.Fatalf("GC: %v", err)
	}
	if summary.PackedObjects != 2 {
		t.Errorf("packed objects: got %d, want 2", summary.PackedObjects)
	}
	if summary.PackFile == "" || summary.IndexFile == "" {
		t.Errorf("summary missing file names: %+v", summary)
	}

	// A second GC has nothing new to pack.
	again, err := s.GC()
	if err != nil {
		t.Fatalf("second GC: %v", err)
	}
	if again.PackedObjects != 0 {
		t.Errorf("second GC packed %d objects, want 0", again.PackedObjects)
	}

	// Drop the loose copies: reads must now come from the pack, through a
	// fresh store so the old read cache cannot serve them.
	for _, h := range []Hash{blobHash, commitHash} {
		if err := os.Remove(s.objectPath(h)); err != nil {
			t.Fatalf("remove loose %s: %v", h, err)
		}
	}
	fresh := NewStore(s.root)

	info, err := fresh.Stat(blobHash)
	if err != nil {
		t.Fatalf("Stat packed blob: %v", err)
	}
	if info.Tier != TierPacked {
		t.Errorf("tier: got %v, want %v", info.Tier, TierPacked)
	}
	if info.Type != TypeBlob {
		t.Errorf("type: got %q, want %q", info.Type, TypeBlob)
	}
	if info.Size != uint64(len("pack me")) {
		t.Errorf("size: got %d", info.Size)
	}
	if info.DiskSize == 0 {
		t.Error("disk size of a packed entry should be nonzero")
	}

	commit, err := fresh.ReadCommit(commitHash)
	if err != nil {
		t.Fatalf("ReadCommit from pack: %v", err)
	}
	if commit.Author != "gc" {
		t.Errorf("commit author: got %q", commit.Author)
	}
}

func TestVerifyCleanStore(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Write(TypeBlob, []byte("loose one")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Write(TypeBlob, []byte("loose two")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.GC(); err != nil {
		t.Fatalf("GC: %v", err)
	}
	if _, err := s.Write(TypeBlob, []byte("loose three")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	report, err := s.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.LooseObjects != 3 {
		t.Errorf("loose objects: got %d, want 3", report.LooseObjects)
	}
	if report.PackFiles != 1 {
		t.Errorf("pack files: got %d, want 1", report.PackFiles)
	}
	if report.PackObjects != 2 {
		t.Errorf("pack objects: got %d, want 2", report.PackObjects)
	}
}

func TestVerifyDetectsTamperedLooseObject(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(TypeBlob, []byte("original"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	tampered := makeObjectEnvelope(TypeBlob, []byte("altered!"))
	if err := os.WriteFile(s.objectPath(h), tampered, 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	if _, err := s.Verify(); err == nil {
		t.Error("Verify should report a hash mismatch")
	}
}
