package survey

import (
	"github.com/odvcencio/surveyor/pkg/object"
)

// ParentBinLen is the number of linear commit parent-count buckets: one per
// count 0 through 15, with the last bucket collecting 16 and above.
const ParentBinLen = 17

// tierCount is sized to index by object.StorageTier.
const tierCount = 4

// BaseStats holds the per-kind counters shared by commits, trees, and
// blobs. Seen always equals Missing plus the sum of the tier counts; size
// sums and the histogram only accumulate for resolved objects.
type BaseStats struct {
	Seen    uint32
	Missing uint32

	TierCounts [tierCount]uint32

	SumSize     uint64
	SumDiskSize uint64

	SizeHist [hbinLen]HistBin
}

func (b *BaseStats) resolved(info *object.ObjectInfo) {
	if t := int(info.Tier); t >= 0 && t < tierCount {
		b.TierCounts[t]++
	}
	b.SumSize += info.Size
	b.SumDiskSize += info.DiskSize
	b.SizeHist[hbin(info.Size)].add(info.Size, info.DiskSize)
}

// CommitStats covers reachable commits.
type CommitStats struct {
	Base BaseStats

	// ParentHist[i] counts commits with i parents; the last bucket is
	// ParentBinLen-1 or more.
	ParentHist [ParentBinLen]uint32

	ByParents *LargeItemVec
	BySize    *LargeItemVec
}

// TreeStats covers reachable trees.
type TreeStats struct {
	Base BaseStats

	SumEntries uint64
	EntryHist  [qbinLen]HistBin

	ByEntries *LargeItemVec
	BySize    *LargeItemVec
}

// BlobStats covers reachable blobs.
type BlobStats struct {
	Base BaseStats

	BySize *LargeItemVec
}

// Stats is the aggregate result of one survey run. It is created at run
// start, mutated only during the pass, and read-only afterward.
type Stats struct {
	// Requested echoes the ref patterns the run surveyed.
	Requested []string

	Refs    RefStats
	Commits CommitStats
	Trees   TreeStats
	Blobs   BlobStats
}

func newStats(opts Options) *Stats {
	return &Stats{
		Commits: CommitStats{
			ByParents: NewLargeItemVec("largest_commits_by_nr_parents", opts.KCommitParents),
			BySize:    NewLargeItemVec("largest_commits_by_size_bytes", opts.KCommitSizes),
		},
		Trees: TreeStats{
			ByEntries: NewLargeItemVec("largest_trees_by_nr_entries", opts.KTreeEntries),
			BySize:    NewLargeItemVec("largest_trees_by_size_bytes", opts.KTreeSizes),
		},
		Blobs: BlobStats{
			BySize: NewLargeItemVec("largest_blobs_by_size_bytes", opts.KBlobSizes),
		},
	}
}

// trackers returns the non-nil top-K trackers for enrichment and reporting.
func (s *Stats) trackers() []*LargeItemVec {
	all := []*LargeItemVec{
		s.Commits.ByParents,
		s.Commits.BySize,
		s.Trees.ByEntries,
		s.Trees.BySize,
		s.Blobs.BySize,
	}
	out := all[:0]
	for _, v := range all {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
