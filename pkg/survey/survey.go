package survey

import (
	"fmt"

	"github.com/odvcencio/surveyor/pkg/object"
	"github.com/odvcencio/surveyor/pkg/repo"
)

// DefaultTopK is the per-dimension top-K capacity when none is configured.
const DefaultTopK = 10

// ProgressFunc receives coarse progress during a run: the current phase
// ("refs", "walk", "names") and a running event count for that phase.
type ProgressFunc func(phase string, n int)

// Options configures one survey run.
type Options struct {
	RefClasses RefClasses

	// Top-K capacities, one per tracked dimension. Zero disables a
	// dimension; negative values also disable it.
	KCommitParents int
	KCommitSizes   int
	KTreeEntries   int
	KTreeSizes     int
	KBlobSizes     int

	// NameRev enables the post-walk enrichment pass that labels retained
	// items with ref-relative commit names.
	NameRev bool

	Progress ProgressFunc
}

// DefaultOptions surveys branches, tags, and remotes with DefaultTopK slots
// per dimension.
func DefaultOptions() Options {
	return Options{
		RefClasses: RefClasses{
			Branches: true,
			Tags:     true,
			Remotes:  true,
		},
		KCommitParents: DefaultTopK,
		KCommitSizes:   DefaultTopK,
		KTreeEntries:   DefaultTopK,
		KTreeSizes:     DefaultTopK,
		KBlobSizes:     DefaultTopK,
	}
}

// refPatterns derives the ref name patterns for the requested classes. An
// all-refs run surveys everything, expressed as an empty pattern list.
func refPatterns(c RefClasses) []string {
	if c.All {
		return nil
	}
	var out []string
	if c.Branches {
		out = append(out, "refs/heads/")
	}
	if c.Tags {
		out = append(out, "refs/tags/")
	}
	if c.Remotes {
		out = append(out, "refs/remotes/")
	}
	if c.Other {
		out = append(out, "refs/")
	}
	if c.Detached {
		out = append(out, "HEAD")
	}
	return out
}

// Run executes a full survey of the repository: ref enumeration and
// classification, a reachability walk feeding the accumulator, and the
// optional name enrichment pass. Setup failures are fatal; per-object
// resolution failures surface as missing counts in the result.
func Run(r *repo.Repo, opts Options) (*Stats, error) {
	progress := opts.Progress
	if progress == nil {
		progress = func(string, int) {}
	}

	patterns := refPatterns(opts.RefClasses)
	records, err := r.ListRefRecords(patterns)
	if err != nil {
		return nil, fmt.Errorf("survey: enumerate refs: %w", err)
	}
	progress("refs", len(records))

	stats := newStats(opts)
	if opts.RefClasses.All {
		stats.Requested = []string{"(all)"}
	} else {
		stats.Requested = patterns
	}
	stats.Refs = classifyRefs(records, opts.RefClasses, r.Peel)

	roots := make([]object.Hash, 0, len(records))
	tips := make([]refTip, 0, len(records))
	for _, rec := range records {
		if !opts.RefClasses.wants(rec.Kind) {
			continue
		}
		if rec.Hash == "" {
			continue
		}
		peeled, _, err := r.Peel(rec.Hash)
		if err != nil || peeled == "" {
			continue
		}
		roots = append(roots, peeled)
		tips = append(tips, refTip{name: rec.Name, hash: peeled})
	}

	acc := &accumulator{meta: r.Store, stats: stats}
	visited := 0
	err = r.Store.WalkReachable(roots,
		func(id object.Hash, c *object.CommitObj) error {
			acc.commitEvent(id, c)
			visited++
			progress("walk", visited)
			return nil
		},
		func(id object.Hash, objType object.ObjectType, path string, containing object.Hash) error {
			acc.objectEvent(id, objType, path, containing)
			visited++
			progress("walk", visited)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("survey: walk: %w", err)
	}

	if opts.NameRev {
		resolved := resolveNames(r.Store, tips, stats.trackers())
		progress("names", resolved)
	}

	return stats, nil
}
