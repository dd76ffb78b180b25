package object

import (
	"fmt"
	"sort"
	"strings"
)

// CommitVisitFunc receives each reachable commit exactly once. The commit
// object is nil when the commit could not be read; the walk continues but
// does not descend through it.
type CommitVisitFunc func(id Hash, c *CommitObj) error

// ObjectVisitFunc receives each reachable tree and blob exactly once. The
// path is slash-joined relative to the root tree of the commit that first
// reached the object, empty for root trees. containing is that commit's id,
// empty for objects reached directly from a root.
type ObjectVisitFunc func(id Hash, objType ObjectType, path string, containing Hash) error

// WalkReachable walks the commit graph from the given roots in breadth-first
// order and emits every reachable object exactly once. Commits go to
// onCommit; trees and blobs go to onObject, each attributed to the commit
// that first reached them. Roots that do not exist in the store are skipped.
// Tag roots are peeled to their targets before the walk.
func (s *Store) WalkReachable(roots []Hash, onCommit CommitVisitFunc, onObject ObjectVisitFunc) error {
	roots = uniqueNormalizedHashes(roots)
	if len(roots) == 0 {
		return nil
	}

	w := &reachWalker{
		store:    s,
		seen:     make(map[Hash]struct{}),
		onCommit: onCommit,
		onObject: onObject,
	}

	var queue []Hash
	for _, root := range roots {
		id, objType, ok := w.peelRoot(root)
		if !ok {
			continue
		}
		switch objType {
		case TypeCommit:
			queue = append(queue, id)
		case TypeTree:
			if err := w.visitTree(id, "", ""); err != nil {
				return err
			}
		case TypeBlob:
			if err := w.visitBlob(id, "", ""); err != nil {
				return err
			}
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := w.seen[id]; ok {
			continue
		}
		w.seen[id] = struct{}{}

		commit, err := s.ReadCommit(id)
		if err != nil {
			if cbErr := onCommit(id, nil); cbErr != nil {
				return cbErr
			}
			continue
		}
		if err := onCommit(id, commit); err != nil {
			return err
		}

		if err := w.visitTree(commit.TreeHash, "", id); err != nil {
			return err
		}
		for _, parent := range commit.Parents {
			if _, ok := w.seen[parent]; !ok {
				queue = append(queue, parent)
			}
		}
	}

	return nil
}

type reachWalker struct {
	store    *Store
	seen     map[Hash]struct{}
	onCommit CommitVisitFunc
	onObject ObjectVisitFunc
}

// peelRoot resolves a root hash to the underlying commit, tree, or blob,
// following tag objects. Returns false for roots that are missing or that
// peel past the chain limit.
func (w *reachWalker) peelRoot(h Hash) (Hash, ObjectType, bool) {
	const maxTagChain = 16
	for i := 0; i < maxTagChain; i++ {
		info, err := w.store.Stat(h)
		if err != nil {
			return "", "", false
		}
		if info.Type != TypeTag {
			return h, info.Type, true
		}
		tag, err := w.store.ReadTag(h)
		if err != nil {
			return "", "", false
		}
		h = tag.TargetHash
	}
	return "", "", false
}

func (w *reachWalker) visitTree(id Hash, path string, containing Hash) error {
	if id == "" {
		return nil
	}
	if _, ok := w.seen[id]; ok {
		return nil
	}
	w.seen[id] = struct{}{}

	if err := w.onObject(id, TypeTree, path, containing); err != nil {
		return err
	}

	tree, err := w.store.ReadTree(id)
	if err != nil {
		// Emitted above so the caller can account for it; nothing to
		// descend through.
		return nil
	}
	for _, entry := range tree.Entries {
		entryPath := joinTreePath(path, entry.Name)
		if entry.IsDir {
			if err := w.visitTree(entry.SubtreeHash, entryPath, containing); err != nil {
				return err
			}
			continue
		}
		if err := w.visitBlob(entry.BlobHash, entryPath, containing); err != nil {
			return err
		}
	}
	return nil
}

func (w *reachWalker) visitBlob(id Hash, path string, containing Hash) error {
	if id == "" {
		return nil
	}
	if _, ok := w.seen[id]; ok {
		return nil
	}
	w.seen[id] = struct{}{}
	return w.onObject(id, TypeBlob, path, containing)
}

func joinTreePath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReachableSet returns the hashes of all objects reachable from roots.
// Unreadable objects are included but not descended through.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]struct{}, error) {
	out := make(map[Hash]struct{})
	err := s.WalkReachable(roots,
		func(id Hash, _ *CommitObj) error {
			out[id] = struct{}{}
			return nil
		},
		func(id Hash, _ ObjectType, _ string, _ Hash) error {
			out[id] = struct{}{}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("reachable set: %w", err)
	}
	return out, nil
}
