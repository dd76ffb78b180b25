package survey

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/odvcencio/surveyor/pkg/object"
)

const shortHashLen = 12

// WriteText renders the stats model as tabular text. Zero-count rows and
// buckets are omitted.
func WriteText(w io.Writer, s *Stats) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Fprintln(w, "REFERENCES")
	writeRefTables(w, &s.Refs, s.Requested)

	header.Fprintln(w, "COMMITS")
	writeBaseTable(w, &s.Commits.Base)
	writeParentHist(w, &s.Commits)
	writeSizeHist(w, "dist_by_size", s.Commits.Base.SizeHist[:], hbinLabel, hbinRange)
	writeLargest(w, false, s.Commits.ByParents, s.Commits.BySize)

	header.Fprintln(w, "TREES")
	writeBaseTable(w, &s.Trees.Base)
	fmt.Fprintf(w, "sum of entries: %d\n", s.Trees.SumEntries)
	writeSizeHist(w, "dist_by_size", s.Trees.Base.SizeHist[:], hbinLabel, hbinRange)
	writeSizeHist(w, "dist_by_nr_entries", s.Trees.EntryHist[:], qbinLabel, qbinRange)
	writeLargest(w, true, s.Trees.ByEntries, s.Trees.BySize)

	header.Fprintln(w, "BLOBS")
	writeBaseTable(w, &s.Blobs.Base)
	writeSizeHist(w, "dist_by_size", s.Blobs.Base.SizeHist[:], hbinLabel, hbinRange)
	writeLargest(w, false, s.Blobs.BySize)

	return nil
}

func hbinLabel(i int) string { return fmt.Sprintf("H%d", i) }
func qbinLabel(i int) string { return fmt.Sprintf("Q%02d", i) }

func writeRefTables(w io.Writer, r *RefStats, requested []string) {
	if len(requested) > 0 {
		fmt.Fprintf(w, "requested: %v\n", requested)
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"counter", "value"})
	appendNonZero := func(name string, v uint32) {
		if v != 0 {
			tbl.AppendRow(table.Row{name, v})
		}
	}
	tbl.AppendRow(table.Row{"total", r.Total})
	appendNonZero("branches", r.Branches)
	appendNonZero("lightweight tags", r.LightweightTags)
	appendNonZero("annotated tags", r.AnnotatedTags)
	appendNonZero("remotes", r.Remotes)
	appendNonZero("detached", r.Detached)
	appendNonZero("other", r.Other)
	appendNonZero("symbolic", r.Symbolic)
	appendNonZero("loose", r.Loose)
	appendNonZero("packed", r.Packed)
	tbl.AppendRow(table.Row{"max refname len (local)", r.MaxLocalLen})
	tbl.AppendRow(table.Row{"sum refname len (local)", r.SumLocalLen})
	if r.Remotes > 0 {
		tbl.AppendRow(table.Row{"max refname len (remote)", r.MaxRemoteLen})
		tbl.AppendRow(table.Row{"sum refname len (remote)", r.SumRemoteLen})
	}
	tbl.Render()

	if len(r.ByClass) == 0 {
		return
	}
	labels := make([]string, 0, len(r.ByClass))
	for label := range r.ByClass {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	byClass := table.NewWriter()
	byClass.SetOutputMirror(w)
	byClass.SetStyle(table.StyleLight)
	byClass.AppendHeader(table.Row{"class", "count"})
	for _, label := range labels {
		byClass.AppendRow(table.Row{label, r.ByClass[label]})
	}
	byClass.Render()
}

func writeBaseTable(w io.Writer, b *BaseStats) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"counter", "value"})
	tbl.AppendRow(table.Row{"seen", b.Seen})
	if b.Missing != 0 {
		tbl.AppendRow(table.Row{"missing", b.Missing})
	}
	for tier, count := range b.TierCounts {
		if count == 0 {
			continue
		}
		tbl.AppendRow(table.Row{object.StorageTier(tier).String(), count})
	}
	tbl.AppendRow(table.Row{"sum size", humanize.Bytes(b.SumSize)})
	tbl.AppendRow(table.Row{"sum disk size", humanize.Bytes(b.SumDiskSize)})
	tbl.Render()
}

func writeParentHist(w io.Writer, c *CommitStats) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"parents", "count"})
	empty := true
	for i, count := range c.ParentHist {
		if count == 0 {
			continue
		}
		empty = false
		tbl.AppendRow(table.Row{parentBinLabel(i), count})
	}
	if !empty {
		tbl.Render()
	}
}

func writeSizeHist(w io.Writer, title string, bins []HistBin, label func(int) string, rangeOf func(int) (uint64, uint64)) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{title, "range", "count", "sum size", "sum disk size"})
	empty := true
	for i, bin := range bins {
		if bin.Count == 0 {
			continue
		}
		empty = false
		lower, upper := rangeOf(i)
		tbl.AppendRow(table.Row{
			label(i),
			fmt.Sprintf("%s..%s", humanize.Comma(int64(lower)), humanize.Comma(int64(upper))),
			bin.Count,
			humanize.Bytes(bin.SumSize),
			humanize.Bytes(bin.SumDiskSize),
		})
	}
	if !empty {
		tbl.Render()
	}
}

func writeLargest(w io.Writer, synthesizeRootName bool, vecs ...*LargeItemVec) {
	for _, vec := range vecs {
		if vec == nil || len(vec.Items()) == 0 {
			continue
		}
		fmt.Fprintln(w, vec.Kind())

		tbl := table.NewWriter()
		tbl.SetOutputMirror(w)
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"size", "id", "name", "commit"})
		items := vec.Items()
		for i := range items {
			commitLabel := items[i].DisplayName
			if commitLabel == "" {
				commitLabel = shortHash(items[i].ContainingCommitID)
			}
			tbl.AppendRow(table.Row{
				items[i].Size,
				shortHash(items[i].ID),
				itemDisplayPath(&items[i], synthesizeRootName),
				commitLabel,
			})
		}
		tbl.Render()
	}
}

func shortHash(h object.Hash) string {
	if len(h) <= shortHashLen {
		return string(h)
	}
	return string(h[:shortHashLen])
}
