package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/surveyor/pkg/object"
)

// RefKind partitions references by namespace.
type RefKind int

const (
	RefKindUnknown RefKind = iota
	RefKindBranch
	RefKindTag
	RefKindRemote
	RefKindDetached
	RefKindOther
)

func (k RefKind) String() string {
	switch k {
	case RefKindBranch:
		return "branch"
	case RefKindTag:
		return "tag"
	case RefKindRemote:
		return "remote"
	case RefKindDetached:
		return "detached"
	case RefKindOther:
		return "other"
	default:
		return "unknown"
	}
}

// RefRecord is one reference with its classification and provenance.
type RefRecord struct {
	Name       string // full name, e.g. "refs/heads/main", or "HEAD"
	Hash       object.Hash
	Kind       RefKind
	IsSymbolic bool // HEAD pointing at a ref rather than a hash
	IsPacked   bool // value came from the packed-refs file
}

// ClassifyRefName maps a full ref name to its kind. "HEAD" classifies as
// detached; the caller downgrades it when HEAD turns out to be symbolic.
func ClassifyRefName(name string) RefKind {
	switch {
	case name == "HEAD":
		return RefKindDetached
	case strings.HasPrefix(name, "refs/heads/"):
		return RefKindBranch
	case strings.HasPrefix(name, "refs/tags/"):
		return RefKindTag
	case strings.HasPrefix(name, "refs/remotes/"):
		return RefKindRemote
	case strings.HasPrefix(name, "refs/"):
		return RefKindOther
	default:
		return RefKindUnknown
	}
}

// ListRefs lists loose references under .got/refs.
// Names are returned relative to refs root, e.g. "heads/main", "tags/v1".
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.GotDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[name] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// ListRefRecords merges loose and packed refs into classified records sorted
// by name. Loose values win over packed ones for the same name. When
// patterns is non-empty, only refs whose full name matches a pattern prefix
// are returned. A HEAD record is always appended: detached HEAD carries the
// hash, symbolic HEAD is marked IsSymbolic with the target branch resolved.
func (r *Repo) ListRefRecords(patterns []string) ([]RefRecord, error) {
	packed, err := r.readPackedRefs()
	if err != nil {
		return nil, fmt.Errorf("list ref records: %w", err)
	}
	loose, err := r.ListRefs("")
	if err != nil {
		return nil, fmt.Errorf("list ref records: %w", err)
	}

	merged := make(map[string]RefRecord, len(packed)+len(loose))
	for name, h := range packed {
		merged[name] = RefRecord{
			Name:     name,
			Hash:     h,
			Kind:     ClassifyRefName(name),
			IsPacked: true,
		}
	}
	for rel, h := range loose {
		name := "refs/" + rel
		merged[name] = RefRecord{
			Name: name,
			Hash: h,
			Kind: ClassifyRefName(name),
		}
	}

	out := make([]RefRecord, 0, len(merged)+1)
	for _, rec := range merged {
		if !matchRefPatterns(rec.Name, patterns) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	head, err := r.headRecord()
	if err != nil {
		return nil, fmt.Errorf("list ref records: %w", err)
	}
	if head != nil && matchRefPatterns(head.Name, patterns) {
		out = append(out, *head)
	}

	return out, nil
}

// headRecord builds the record for HEAD. Returns nil when HEAD does not
// exist, which happens in a store-only layout.
func (r *Repo) headRecord() (*RefRecord, error) {
	head, err := r.Head()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	if strings.HasPrefix(head, "refs/") {
		rec := &RefRecord{
			Name:       "HEAD",
			Kind:       RefKindUnknown,
			IsSymbolic: true,
		}
		if h, err := r.ResolveRef(head); err == nil {
			rec.Hash = h
		}
		return rec, nil
	}
	return &RefRecord{
		Name: "HEAD",
		Hash: object.Hash(head),
		Kind: RefKindDetached,
	}, nil
}

func matchRefPatterns(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if name == p || strings.HasPrefix(name, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
