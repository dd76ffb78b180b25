package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/surveyor/pkg/object"
)

func tempRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func writeTestCommit(t *testing.T, r *Repo, message string, parents ...object.Hash) object.Hash {
	t.Helper()
	blob, err := r.Store.WriteBlob(&object.Blob{Data: []byte(message)})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	tree, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Name: "file.txt", BlobHash: blob},
	}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	commit, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  tree,
		Parents:   parents,
		Author:    "test",
		Timestamp: 1700000000,
		Message:   message,
	})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	return commit
}

func TestInitCreatesLayout(t *testing.T) {
	r := tempRepo(t)

	for _, sub := range []string{"objects", "refs/heads", "refs/tags"} {
		if _, err := os.Stat(filepath.Join(r.GotDir, filepath.FromSlash(sub))); err != nil {
			t.Errorf("missing %s: %v", sub, err)
		}
	}

	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != "refs/heads/main" {
		t.Errorf("HEAD: got %q, want refs/heads/main", head)
	}
}

func TestInitRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Error("second Init should fail")
	}
}

func TestOpenSearchesUpward(t *testing.T) {
	r := tempRepo(t)
	nested := filepath.Join(r.RootDir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	opened, err := Open(nested)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.GotDir != r.GotDir {
		t.Errorf("GotDir: got %q, want %q", opened.GotDir, r.GotDir)
	}
}

func TestUpdateAndResolveRef(t *testing.T) {
	r := tempRepo(t)
	c := writeTestCommit(t, r, "one")

	if err := r.UpdateRef("refs/heads/main", c); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	for _, name := range []string{"refs/heads/main", "main", "HEAD"} {
		got, err := r.ResolveRef(name)
		if err != nil {
			t.Fatalf("ResolveRef(%q): %v", name, err)
		}
		if got != c {
			t.Errorf("ResolveRef(%q): got %s, want %s", name, got, c)
		}
	}
}

func TestResolveRefFallsBackToPackedRefs(t *testing.T) {
	r := tempRepo(t)
	c := writeTestCommit(t, r, "packed")

	packed := "# packed-refs\n" + string(c) + " refs/heads/archived\n"
	if err := os.WriteFile(filepath.Join(r.GotDir, "packed-refs"), []byte(packed), 0o644); err != nil {
		t.Fatalf("write packed-refs: %v", err)
	}

	got, err := r.ResolveRef("refs/heads/archived")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != c {
		t.Errorf("packed ref: got %s, want %s", got, c)
	}
}

func TestDetachedHead(t *testing.T) {
	r := tempRepo(t)
	c := writeTestCommit(t, r, "detached")

	if err := os.WriteFile(filepath.Join(r.GotDir, "HEAD"), []byte(string(c)+"\n"), 0o644); err != nil {
		t.Fatalf("write HEAD: %v", err)
	}

	got, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}
	if got != c {
		t.Errorf("detached HEAD: got %s, want %s", got, c)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "" {
		t.Errorf("detached CurrentBranch: got %q, want empty", branch)
	}
}
