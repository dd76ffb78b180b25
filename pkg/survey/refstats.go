package survey

import (
	"strings"

	"github.com/odvcencio/surveyor/pkg/object"
	"github.com/odvcencio/surveyor/pkg/repo"
)

// RefClasses selects which reference classes a run surveys. All overrides
// the individual flags and additionally admits unknown-kind refs.
type RefClasses struct {
	All      bool
	Branches bool
	Tags     bool
	Remotes  bool
	Detached bool
	Other    bool
}

func (c RefClasses) wants(kind repo.RefKind) bool {
	if c.All {
		return true
	}
	switch kind {
	case repo.RefKindBranch:
		return c.Branches
	case repo.RefKindTag:
		return c.Tags
	case repo.RefKindRemote:
		return c.Remotes
	case repo.RefKindDetached:
		return c.Detached
	case repo.RefKindOther:
		return c.Other
	default:
		// Unknown-kind refs only count under all-refs.
		return false
	}
}

// RefStats aggregates the surveyed reference set.
type RefStats struct {
	Total uint32

	Branches        uint32
	LightweightTags uint32
	AnnotatedTags   uint32
	Remotes         uint32
	Detached        uint32
	Other           uint32

	Symbolic uint32
	Loose    uint32
	Packed   uint32

	// Refname length extremes and sums, remote-tracking refs tracked
	// separately from everything else.
	MaxLocalLen  uint32
	SumLocalLen  uint64
	MaxRemoteLen uint32
	SumRemoteLen uint64

	// ByClass maps a grouping label (refs/heads/, refs/remotes/<remote>/,
	// refs/<class>/, or the bare refname for detached and unknown refs) to
	// the number of surveyed refs under it.
	ByClass map[string]uint32
}

// PeelFunc resolves a hash through tag objects to the first non-tag object.
// The bool reports whether at least one tag object was traversed.
type PeelFunc func(object.Hash) (object.Hash, bool, error)

// classifyRefs folds an ordered ref record sequence into RefStats. Records
// outside the requested classes contribute to no counter. Tags are split
// into annotated and lightweight by peeling.
func classifyRefs(records []repo.RefRecord, want RefClasses, peel PeelFunc) RefStats {
	stats := RefStats{ByClass: make(map[string]uint32)}

	for _, rec := range records {
		if !want.wants(rec.Kind) {
			continue
		}

		stats.Total++
		if rec.IsSymbolic {
			stats.Symbolic++
		}
		if rec.IsPacked {
			stats.Packed++
		} else {
			stats.Loose++
		}

		nameLen := uint32(len(rec.Name))
		if rec.Kind == repo.RefKindRemote {
			if nameLen > stats.MaxRemoteLen {
				stats.MaxRemoteLen = nameLen
			}
			stats.SumRemoteLen += uint64(nameLen)
		} else {
			if nameLen > stats.MaxLocalLen {
				stats.MaxLocalLen = nameLen
			}
			stats.SumLocalLen += uint64(nameLen)
		}

		switch rec.Kind {
		case repo.RefKindBranch:
			stats.Branches++
			stats.ByClass["refs/heads/"]++
		case repo.RefKindTag:
			if peel != nil {
				if _, annotated, err := peel(rec.Hash); err == nil && annotated {
					stats.AnnotatedTags++
				} else {
					stats.LightweightTags++
				}
			} else {
				stats.LightweightTags++
			}
			stats.ByClass["refs/tags/"]++
		case repo.RefKindRemote:
			stats.Remotes++
			stats.ByClass[classLabel(rec.Name, 3)]++
		case repo.RefKindDetached:
			stats.Detached++
			stats.ByClass[rec.Name]++
		case repo.RefKindOther:
			stats.Other++
			stats.ByClass[classLabel(rec.Name, 2)]++
		default:
			stats.ByClass[rec.Name]++
		}
	}

	return stats
}

// classLabel truncates a refname after its first n path segments, keeping
// the trailing slash, e.g. ("refs/remotes/origin/main", 3) yields
// "refs/remotes/origin/". Names with fewer segments are returned whole.
func classLabel(name string, n int) string {
	idx := 0
	for i := 0; i < n; i++ {
		j := strings.IndexByte(name[idx:], '/')
		if j < 0 {
			return name
		}
		idx += j + 1
	}
	return name[:idx]
}
