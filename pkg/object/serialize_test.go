package object

import (
	"testing"
)

func TestMarshalTreeSortsEntries(t *testing.T) {
	tree := &TreeObj{Entries: []TreeEntry{
		{Name: "zebra.txt", BlobHash: "aa"},
		{Name: "apple.txt", BlobHash: "bb"},
	}}
	got, err := UnmarshalTree(MarshalTree(tree))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if got.Entries[0].Name != "apple.txt" || got.Entries[1].Name != "zebra.txt" {
		t.Errorf("entries not sorted: %v", got.Entries)
	}
}

func TestUnmarshalTreeRejectsMalformed(t *testing.T) {
	if _, err := UnmarshalTree([]byte("only two fields\n")); err == nil {
		t.Error("malformed entry line should fail")
	}
	if _, err := UnmarshalTree([]byte("f.txt 999999 aa -\n")); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestUnmarshalTreeEmpty(t *testing.T) {
	tr, err := UnmarshalTree(nil)
	if err != nil {
		t.Fatalf("UnmarshalTree(nil): %v", err)
	}
	if len(tr.Entries) != 0 {
		t.Errorf("empty tree should have no entries, got %d", len(tr.Entries))
	}
}

func TestCommitRoundTrip(t *testing.T) {
	c := &CommitObj{
		TreeHash:  "deadbeef",
		Parents:   []Hash{"p1", "p2"},
		Author:    "bob <bob@example.com>",
		Timestamp: 1700001234,
		Message:   "merge feature\n\nwith body",
	}
	got, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if got.TreeHash != c.TreeHash {
		t.Errorf("tree: got %q, want %q", got.TreeHash, c.TreeHash)
	}
	if len(got.Parents) != 2 || got.Parents[0] != "p1" || got.Parents[1] != "p2" {
		t.Errorf("parents: got %v", got.Parents)
	}
	if got.Message != c.Message {
		t.Errorf("message: got %q, want %q", got.Message, c.Message)
	}
}

func TestUnmarshalCommitRejectsMissingSeparator(t *testing.T) {
	if _, err := UnmarshalCommit([]byte("tree abc\nauthor x\ntimestamp 1\n")); err == nil {
		t.Error("commit without blank separator should fail")
	}
}

func TestTagRoundTrip(t *testing.T) {
	payload := "object cafebabe\ntype commit\ntag v1\ntagger t 1 +0000\n\nrelease\n"
	tag, err := UnmarshalTag([]byte(payload))
	if err != nil {
		t.Fatalf("UnmarshalTag: %v", err)
	}
	if tag.TargetHash != "cafebabe" {
		t.Errorf("target: got %q", tag.TargetHash)
	}
	if string(MarshalTag(tag)) != payload {
		t.Error("MarshalTag should preserve payload verbatim")
	}
}

func TestUnmarshalTagRejectsMissingHeader(t *testing.T) {
	if _, err := UnmarshalTag([]byte("type commit\n")); err == nil {
		t.Error("tag without object header should fail")
	}
}
