package survey

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/surveyor/pkg/object"
	"github.com/odvcencio/surveyor/pkg/repo"
)

// surveyFixture builds a repository with one commit whose tree holds a small
// and a large blob, referenced by a branch, a lightweight tag, and a
// remote-tracking ref.
func surveyFixture(t *testing.T) (*repo.Repo, object.Hash) {
	t.Helper()

	r, err := repo.Init(t.TempDir())
	require.NoError(t, err)

	small, err := r.Store.WriteBlob(&object.Blob{Data: bytes.Repeat([]byte("x"), 10)})
	require.NoError(t, err)
	large, err := r.Store.WriteBlob(&object.Blob{Data: bytes.Repeat([]byte("y"), 20000)})
	require.NoError(t, err)

	tree, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Name: "big.bin", BlobHash: large},
		{Name: "small.txt", BlobHash: small},
	}})
	require.NoError(t, err)

	commit, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  tree,
		Author:    "tester",
		Timestamp: 1700000000,
		Message:   "initial",
	})
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("main", commit))
	require.NoError(t, r.CreateTag("v1", commit, false))
	require.NoError(t, r.UpdateRef("refs/remotes/origin/main", commit))

	return r, commit
}

func TestRunDefaultClasses(t *testing.T) {
	r, commit := surveyFixture(t)

	stats, err := Run(r, DefaultOptions())
	require.NoError(t, err)

	refs := stats.Refs
	assert.Equal(t, uint32(3), refs.Total)
	assert.Equal(t, uint32(1), refs.Branches)
	assert.Equal(t, uint32(1), refs.LightweightTags)
	assert.Zero(t, refs.AnnotatedTags)
	assert.Equal(t, uint32(1), refs.Remotes)
	assert.Equal(t, uint32(3), refs.Loose)
	assert.Equal(t, []string{"refs/heads/", "refs/tags/", "refs/remotes/"}, stats.Requested)

	commits := stats.Commits
	assert.Equal(t, uint32(1), commits.Base.Seen)
	assert.Zero(t, commits.Base.Missing)
	assert.Equal(t, uint32(1), commits.ParentHist[0])
	require.Len(t, commits.BySize.Items(), 1)
	assert.Equal(t, commit, commits.BySize.Items()[0].ID)

	trees := stats.Trees
	assert.Equal(t, uint32(1), trees.Base.Seen)
	assert.Equal(t, uint64(2), trees.SumEntries)

	blobs := stats.Blobs
	assert.Equal(t, uint32(2), blobs.Base.Seen)
	assert.Zero(t, blobs.Base.Missing)
	assert.Equal(t, uint64(20010), blobs.Base.SumSize)
	assert.Equal(t, blobs.Base.Seen, tierTotal(blobs.Base.TierCounts))

	items := blobs.BySize.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint64(20000), items[0].Size)
	assert.Equal(t, "big.bin", items[0].Name())
	assert.Equal(t, commit, items[0].ContainingCommitID)
	assert.Equal(t, uint64(10), items[1].Size)
	assert.Equal(t, "small.txt", items[1].Name())
}

func TestRunAnnotatedTagPeelsToCommit(t *testing.T) {
	r, commit := surveyFixture(t)
	_, err := r.CreateAnnotatedTag("v2", commit, "tester", "release two", false)
	require.NoError(t, err)

	stats, err := Run(r, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, uint32(1), stats.Refs.AnnotatedTags)
	assert.Equal(t, uint32(1), stats.Refs.LightweightTags)
	// The tag object itself never enters the walk: still one commit.
	assert.Equal(t, uint32(1), stats.Commits.Base.Seen)
}

func TestRunAllRefsIncludesHead(t *testing.T) {
	r, _ := surveyFixture(t)

	opts := DefaultOptions()
	opts.RefClasses = RefClasses{All: true}
	stats, err := Run(r, opts)
	require.NoError(t, err)

	// Branch, tag, remote, plus the symbolic HEAD record.
	assert.Equal(t, uint32(4), stats.Refs.Total)
	assert.Equal(t, uint32(1), stats.Refs.Symbolic)
	assert.Equal(t, []string{"(all)"}, stats.Requested)
}

func TestRunNameRevEnrichment(t *testing.T) {
	r, _ := surveyFixture(t)

	opts := DefaultOptions()
	opts.NameRev = true
	stats, err := Run(r, opts)
	require.NoError(t, err)

	items := stats.Blobs.BySize.Items()
	require.Len(t, items, 2)
	// All tips share the commit; the lexically first ref name wins.
	assert.Equal(t, "main", items[0].DisplayName)
	assert.Equal(t, "main", items[1].DisplayName)
}

func TestRunDisabledDimensions(t *testing.T) {
	r, _ := surveyFixture(t)

	opts := DefaultOptions()
	opts.KBlobSizes = 0
	opts.KCommitParents = -1
	stats, err := Run(r, opts)
	require.NoError(t, err)

	assert.Nil(t, stats.Blobs.BySize)
	assert.Nil(t, stats.Commits.ByParents)
	// Counters are unaffected by disabled trackers.
	assert.Equal(t, uint32(2), stats.Blobs.Base.Seen)
}

func TestRunReportsProgress(t *testing.T) {
	r, _ := surveyFixture(t)

	phases := make(map[string]int)
	opts := DefaultOptions()
	opts.Progress = func(phase string, n int) { phases[phase] = n }
	_, err := Run(r, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, phases["refs"])
	// 1 commit + 1 tree + 2 blobs.
	assert.Equal(t, 4, phases["walk"])
}

func TestRunEmptyRepository(t *testing.T) {
	r, err := repo.Init(t.TempDir())
	require.NoError(t, err)

	stats, err := Run(r, DefaultOptions())
	require.NoError(t, err)

	assert.Zero(t, stats.Refs.Total)
	assert.Zero(t, stats.Commits.Base.Seen)
	assert.Zero(t, stats.Blobs.Base.Seen)
}
