package survey

import (
	"sort"
	"strconv"
	"strings"

	"github.com/odvcencio/surveyor/pkg/object"
)

// nameRevVisitLimit bounds the reverse walk so enrichment stays cheap even
// in deep histories.
const nameRevVisitLimit = 1 << 16

// CommitReader reads commit objects for the enrichment walk.
// *object.Store satisfies it.
type CommitReader interface {
	ReadCommit(h object.Hash) (*object.CommitObj, error)
}

type refTip struct {
	name string
	hash object.Hash
}

// resolveNames attaches ref-relative labels ("main", "v1.2~3") to every
// retained item's containing commit across all trackers. The walk follows
// first parents from the surveyed ref tips, breadth first, so each commit
// gets the shallowest label that reaches it. All failures are silent; items
// whose commit is never reached keep their raw id. Returns the number of
// items labeled.
func resolveNames(store CommitReader, tips []refTip, trackers []*LargeItemVec) int {
	pending := make(map[object.Hash]struct{})
	for _, vec := range trackers {
		items := vec.Items()
		for i := range items {
			if items[i].ContainingCommitID != "" && items[i].DisplayName == "" {
				pending[items[i].ContainingCommitID] = struct{}{}
			}
		}
	}
	if len(pending) == 0 {
		return 0
	}

	labels := nameCommits(store, tips, pending)
	if len(labels) == 0 {
		return 0
	}

	resolved := 0
	for _, vec := range trackers {
		items := vec.Items()
		for i := range items {
			if label, ok := labels[items[i].ContainingCommitID]; ok && items[i].DisplayName == "" {
				items[i].DisplayName = label
				resolved++
			}
		}
	}
	return resolved
}

// nameCommits walks first-parent chains from the tips and labels each
// visited commit as "<tip>~<distance>". The walk stops once every pending
// id is labeled or the visit limit is hit.
func nameCommits(store CommitReader, tips []refTip, pending map[object.Hash]struct{}) map[object.Hash]string {
	sorted := make([]refTip, len(tips))
	copy(sorted, tips)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })

	type queued struct {
		hash  object.Hash
		tip   string
		depth int
	}
	var queue []queued
	seen := make(map[object.Hash]struct{})
	for _, tip := range sorted {
		if _, ok := seen[tip.hash]; ok {
			continue
		}
		seen[tip.hash] = struct{}{}
		queue = append(queue, queued{hash: tip.hash, tip: shortRefName(tip.name)})
	}

	labels := make(map[object.Hash]string, len(pending))
	remaining := len(pending)
	visited := 0
	for len(queue) > 0 && remaining > 0 && visited < nameRevVisitLimit {
		cur := queue[0]
		queue = queue[1:]
		visited++

		if _, want := pending[cur.hash]; want {
			if _, done := labels[cur.hash]; !done {
				labels[cur.hash] = formatRevName(cur.tip, cur.depth)
				remaining--
			}
		}

		commit, err := store.ReadCommit(cur.hash)
		if err != nil || len(commit.Parents) == 0 {
			continue
		}
		parent := commit.Parents[0]
		if _, ok := seen[parent]; ok {
			continue
		}
		seen[parent] = struct{}{}
		queue = append(queue, queued{hash: parent, tip: cur.tip, depth: cur.depth + 1})
	}
	return labels
}

func formatRevName(tip string, depth int) string {
	if depth == 0 {
		return tip
	}
	return tip + "~" + strconv.Itoa(depth)
}

// shortRefName trims the common ref namespaces for display: branch and tag
// names lose their prefix, everything else just drops "refs/".
func shortRefName(name string) string {
	if s, ok := strings.CutPrefix(name, "refs/heads/"); ok {
		return s
	}
	if s, ok := strings.CutPrefix(name, "refs/tags/"); ok {
		return s
	}
	if s, ok := strings.CutPrefix(name, "refs/"); ok {
		return s
	}
	return name
}
