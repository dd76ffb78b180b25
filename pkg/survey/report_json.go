package survey

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/odvcencio/surveyor/pkg/object"
)

// JSON report shapes. Zero-valued buckets and rows are omitted so the
// output stays readable on large repositories; key order is fixed by the
// struct layout and count_by_class is sorted by label, so identical stats
// always serialize identically.

type jsonReport struct {
	Refs    jsonRefs  `json:"refs"`
	Commits jsonKind  `json:"commits"`
	Trees   jsonTrees `json:"trees"`
	Blobs   jsonKind  `json:"blobs"`
}

type jsonClassCount struct {
	Class string `json:"class"`
	Count uint32 `json:"count"`
}

type jsonRefnameLength struct {
	MaxLocal  uint32 `json:"max_local"`
	SumLocal  uint64 `json:"sum_local"`
	MaxRemote uint32 `json:"max_remote"`
	SumRemote uint64 `json:"sum_remote"`
}

type jsonRefs struct {
	Requested          []string          `json:"requested,omitempty"`
	CntTotal           uint32            `json:"cnt_total"`
	CntBranches        uint32            `json:"cnt_branches,omitempty"`
	CntLightweightTags uint32            `json:"cnt_lightweight_tags,omitempty"`
	CntAnnotatedTags   uint32            `json:"cnt_annotated_tags,omitempty"`
	CntRemotes         uint32            `json:"cnt_remotes,omitempty"`
	CntDetached        uint32            `json:"cnt_detached,omitempty"`
	CntOther           uint32            `json:"cnt_other,omitempty"`
	CntSymbolic        uint32            `json:"cnt_symbolic,omitempty"`
	CntLoose           uint32            `json:"cnt_loose,omitempty"`
	CntPacked          uint32            `json:"cnt_packed,omitempty"`
	RefnameLength      jsonRefnameLength `json:"refname_length"`
	CountByClass       []jsonClassCount  `json:"count_by_class,omitempty"`
}

type jsonWhenceCount struct {
	Whence string `json:"whence"`
	Count  uint32 `json:"count"`
}

type jsonBin struct {
	Bucket      string `json:"bucket"`
	Lower       uint64 `json:"lower"`
	Upper       uint64 `json:"upper"`
	Count       uint32 `json:"count"`
	SumSize     uint64 `json:"sum_size"`
	SumDiskSize uint64 `json:"sum_disk_size"`
}

type jsonParentBin struct {
	Bucket string `json:"bucket"`
	Count  uint32 `json:"count"`
}

type jsonLargeItem struct {
	ID               string `json:"id"`
	Size             uint64 `json:"size"`
	Name             string `json:"name,omitempty"`
	ContainingCommit string `json:"containing_commit,omitempty"`
	DisplayName      string `json:"display_name,omitempty"`
}

type jsonKind struct {
	CntSeen        uint32            `json:"cnt_seen"`
	CntMissing     uint32            `json:"cnt_missing,omitempty"`
	CountByWhence  []jsonWhenceCount `json:"count_by_whence,omitempty"`
	SumSize        uint64            `json:"sum_size"`
	SumDiskSize    uint64            `json:"sum_disk_size"`
	DistBySize     []jsonBin         `json:"dist_by_size,omitempty"`
	CntByNrParents []jsonParentBin   `json:"count_by_nr_parents,omitempty"`
	Largest        []jsonLargest     `json:"largest,omitempty"`
}

type jsonTrees struct {
	jsonKind
	SumEntries      uint64    `json:"sum_nr_entries"`
	DistByNrEntries []jsonBin `json:"dist_by_nr_entries,omitempty"`
}

type jsonLargest struct {
	Dimension string          `json:"dimension"`
	Items     []jsonLargeItem `json:"items"`
}

// WriteJSON serializes the stats model as indented JSON.
func WriteJSON(w io.Writer, s *Stats) error {
	report := jsonReport{
		Refs:    buildJSONRefs(&s.Refs, s.Requested),
		Commits: buildJSONKind(&s.Commits.Base),
		Trees: jsonTrees{
			jsonKind:        buildJSONKind(&s.Trees.Base),
			SumEntries:      s.Trees.SumEntries,
			DistByNrEntries: buildJSONBins(s.Trees.EntryHist[:], "Q%02d", qbinRange),
		},
		Blobs: buildJSONKind(&s.Blobs.Base),
	}

	report.Commits.CntByNrParents = buildJSONParentBins(&s.Commits)
	report.Commits.Largest = buildJSONLargest(false, s.Commits.ByParents, s.Commits.BySize)
	report.Trees.Largest = buildJSONLargest(true, s.Trees.ByEntries, s.Trees.BySize)
	report.Blobs.Largest = buildJSONLargest(false, s.Blobs.BySize)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}

func buildJSONRefs(r *RefStats, requested []string) jsonRefs {
	out := jsonRefs{
		Requested:          requested,
		CntTotal:           r.Total,
		CntBranches:        r.Branches,
		CntLightweightTags: r.LightweightTags,
		CntAnnotatedTags:   r.AnnotatedTags,
		CntRemotes:         r.Remotes,
		CntDetached:        r.Detached,
		CntOther:           r.Other,
		CntSymbolic:        r.Symbolic,
		CntLoose:           r.Loose,
		CntPacked:          r.Packed,
		RefnameLength: jsonRefnameLength{
			MaxLocal:  r.MaxLocalLen,
			SumLocal:  r.SumLocalLen,
			MaxRemote: r.MaxRemoteLen,
			SumRemote: r.SumRemoteLen,
		},
	}
	labels := make([]string, 0, len(r.ByClass))
	for label := range r.ByClass {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		out.CountByClass = append(out.CountByClass, jsonClassCount{
			Class: label,
			Count: r.ByClass[label],
		})
	}
	return out
}

func buildJSONKind(b *BaseStats) jsonKind {
	out := jsonKind{
		CntSeen:     b.Seen,
		CntMissing:  b.Missing,
		SumSize:     b.SumSize,
		SumDiskSize: b.SumDiskSize,
		DistBySize:  buildJSONBins(b.SizeHist[:], "H%d", hbinRange),
	}
	for tier, count := range b.TierCounts {
		if count == 0 {
			continue
		}
		out.CountByWhence = append(out.CountByWhence, jsonWhenceCount{
			Whence: object.StorageTier(tier).String(),
			Count:  count,
		})
	}
	return out
}

func buildJSONBins(bins []HistBin, labelFmt string, rangeOf func(int) (uint64, uint64)) []jsonBin {
	var out []jsonBin
	for i, bin := range bins {
		if bin.Count == 0 {
			continue
		}
		lower, upper := rangeOf(i)
		out = append(out, jsonBin{
			Bucket:      fmt.Sprintf(labelFmt, i),
			Lower:       lower,
			Upper:       upper,
			Count:       bin.Count,
			SumSize:     bin.SumSize,
			SumDiskSize: bin.SumDiskSize,
		})
	}
	return out
}

func buildJSONParentBins(c *CommitStats) []jsonParentBin {
	var out []jsonParentBin
	for i, count := range c.ParentHist {
		if count == 0 {
			continue
		}
		out = append(out, jsonParentBin{
			Bucket: parentBinLabel(i),
			Count:  count,
		})
	}
	return out
}

func parentBinLabel(i int) string {
	if i == ParentBinLen-1 {
		return fmt.Sprintf("P%02d+", i)
	}
	return fmt.Sprintf("P%02d", i)
}

func buildJSONLargest(synthesizeRootName bool, vecs ...*LargeItemVec) []jsonLargest {
	var out []jsonLargest
	for _, vec := range vecs {
		if vec == nil {
			continue
		}
		items := vec.Items()
		if len(items) == 0 {
			continue
		}
		section := jsonLargest{Dimension: vec.Kind()}
		for i := range items {
			section.Items = append(section.Items, jsonLargeItem{
				ID:               string(items[i].ID),
				Size:             items[i].Size,
				Name:             itemDisplayPath(&items[i], synthesizeRootName),
				ContainingCommit: string(items[i].ContainingCommitID),
				DisplayName:      items[i].DisplayName,
			})
		}
		out = append(out, section)
	}
	return out
}

// itemDisplayPath returns the item's recorded path, synthesizing the
// conventional "<commit>^{tree}" label for root trees when asked.
func itemDisplayPath(it *LargeItem, synthesizeRoot bool) string {
	name := it.Name()
	if name == "" && synthesizeRoot && it.ContainingCommitID != "" {
		return string(it.ContainingCommitID) + "^{tree}"
	}
	return name
}
