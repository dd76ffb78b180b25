package survey

import (
	"github.com/odvcencio/surveyor/pkg/object"
)

// MetadataSource resolves per-object metadata and decodes tree contents.
// *object.Store satisfies it.
type MetadataSource interface {
	Stat(h object.Hash) (*object.ObjectInfo, error)
	ReadTree(h object.Hash) (*object.TreeObj, error)
}

// accumulator folds the traversal event stream into a Stats model. Objects
// that cannot be resolved or whose type does not match the event are tallied
// as missing and never abort the pass; partial repositories produce missing
// objects routinely.
type accumulator struct {
	meta  MetadataSource
	stats *Stats
}

func (a *accumulator) commitEvent(id object.Hash, c *object.CommitObj) {
	base := &a.stats.Commits.Base
	base.Seen++

	info, err := a.meta.Stat(id)
	if err != nil || info.Type != object.TypeCommit || c == nil {
		base.Missing++
		return
	}
	base.resolved(info)

	parents := len(c.Parents)
	bucket := parents
	if bucket >= ParentBinLen {
		bucket = ParentBinLen - 1
	}
	a.stats.Commits.ParentHist[bucket]++

	a.stats.Commits.ByParents.Offer(uint64(parents), id, "", id)
	a.stats.Commits.BySize.Offer(info.Size, id, "", id)
}

func (a *accumulator) objectEvent(id object.Hash, objType object.ObjectType, path string, containing object.Hash) {
	switch objType {
	case object.TypeTree:
		a.treeEvent(id, path, containing)
	case object.TypeBlob:
		a.blobEvent(id, path, containing)
	}
}

func (a *accumulator) treeEvent(id object.Hash, path string, containing object.Hash) {
	base := &a.stats.Trees.Base
	base.Seen++

	info, err := a.meta.Stat(id)
	if err != nil || info.Type != object.TypeTree {
		base.Missing++
		return
	}
	base.resolved(info)

	// A tree whose metadata resolves but whose body cannot be decoded is
	// still a resolved tree; it contributes entry count 0, same as an empty
	// tree. Only Stat failures count as missing.
	entries := uint64(0)
	if tree, err := a.meta.ReadTree(id); err == nil {
		entries = uint64(len(tree.Entries))
	}
	a.stats.Trees.SumEntries += entries
	a.stats.Trees.EntryHist[qbin(entries)].add(info.Size, info.DiskSize)

	a.stats.Trees.ByEntries.Offer(entries, id, path, containing)
	a.stats.Trees.BySize.Offer(info.Size, id, path, containing)
}

func (a *accumulator) blobEvent(id object.Hash, path string, containing object.Hash) {
	base := &a.stats.Blobs.Base
	base.Seen++

	info, err := a.meta.Stat(id)
	if err != nil || info.Type != object.TypeBlob {
		base.Missing++
		return
	}
	base.resolved(info)

	a.stats.Blobs.BySize.Offer(info.Size, id, path, containing)
}
