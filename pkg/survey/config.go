package survey

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig holds survey defaults read from .got/config.toml. All fields
// are pointers so an absent key is distinguishable from an explicit false
// or zero; CLI flags override any value set here.
type FileConfig struct {
	Survey struct {
		JSON     *bool `toml:"json"`
		NameRev  *bool `toml:"name_rev"`
		Verbose  *bool `toml:"verbose"`
		Progress *bool `toml:"progress"`

		AllRefs  *bool `toml:"all_refs"`
		Branches *bool `toml:"branches"`
		Tags     *bool `toml:"tags"`
		Remotes  *bool `toml:"remotes"`
		Detached *bool `toml:"detached"`
		Other    *bool `toml:"other"`

		CommitParents *int `toml:"commit_parents"`
		CommitSizes   *int `toml:"commit_sizes"`
		TreeEntries   *int `toml:"tree_entries"`
		TreeSizes     *int `toml:"tree_sizes"`
		BlobSizes     *int `toml:"blob_sizes"`
	} `toml:"survey"`
}

// LoadConfig reads survey defaults from <gotDir>/config.toml. A missing file
// yields an empty config; a malformed file is an error.
func LoadConfig(gotDir string) (*FileConfig, error) {
	path := filepath.Join(gotDir, "config.toml")
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveRefClasses applies the ref-selection fixup rule: all-refs overrides
// everything; otherwise any positively selected class disables the defaults;
// with nothing selected, branches, tags, and remotes are surveyed.
func ResolveRefClasses(all, branches, tags, remotes, detached, other bool) RefClasses {
	if all {
		return RefClasses{All: true}
	}
	if branches || tags || remotes || detached || other {
		return RefClasses{
			Branches: branches,
			Tags:     tags,
			Remotes:  remotes,
			Detached: detached,
			Other:    other,
		}
	}
	return RefClasses{Branches: true, Tags: true, Remotes: true}
}

// boolValue dereferences a tri-state config bool with a fallback.
func boolValue(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

// intValue dereferences a tri-state config int with a fallback.
func intValue(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// ApplyDefaults folds file-config values into opts for every field the
// caller did not set on the command line. changed reports whether a given
// flag was explicitly passed.
func (c *FileConfig) ApplyDefaults(opts *Options, changed func(name string) bool) {
	s := c.Survey
	if !changed("name-rev") {
		opts.NameRev = boolValue(s.NameRev, opts.NameRev)
	}
	if !changed("commit-parents") {
		opts.KCommitParents = intValue(s.CommitParents, opts.KCommitParents)
	}
	if !changed("commit-sizes") {
		opts.KCommitSizes = intValue(s.CommitSizes, opts.KCommitSizes)
	}
	if !changed("tree-entries") {
		opts.KTreeEntries = intValue(s.TreeEntries, opts.KTreeEntries)
	}
	if !changed("tree-sizes") {
		opts.KTreeSizes = intValue(s.TreeSizes, opts.KTreeSizes)
	}
	if !changed("blob-sizes") {
		opts.KBlobSizes = intValue(s.BlobSizes, opts.KBlobSizes)
	}
}
