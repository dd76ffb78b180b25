package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/surveyor/pkg/object"
)

const packedRefsFile = "packed-refs"

// readPackedRefs parses the packed-refs file into full ref name -> hash.
// A missing file yields an empty map. Lines starting with '#' are comments.
func (r *Repo) readPackedRefs() (map[string]object.Hash, error) {
	data, err := os.ReadFile(filepath.Join(r.GotDir, packedRefsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]object.Hash{}, nil
		}
		return nil, fmt.Errorf("read packed-refs: %w", err)
	}

	out := make(map[string]object.Hash)
	for lineNo, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hashStr, name, ok := strings.Cut(line, " ")
		if !ok || name == "" {
			return nil, fmt.Errorf("read packed-refs: malformed line %d: %q", lineNo+1, line)
		}
		out[name] = object.Hash(hashStr)
	}
	return out, nil
}

// PackRefs moves all loose refs under refs/ into the packed-refs file and
// removes the loose files. Loose values win over previously packed ones.
func (r *Repo) PackRefs() error {
	packed, err := r.readPackedRefs()
	if err != nil {
		return fmt.Errorf("pack refs: %w", err)
	}

	loose, err := r.ListRefs("")
	if err != nil {
		return fmt.Errorf("pack refs: %w", err)
	}
	for name, h := range loose {
		packed["refs/"+name] = h
	}

	names := make([]string, 0, len(packed))
	for name := range packed {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("# packed-refs\n")
	for _, name := range names {
		sb.WriteString(string(packed[name]))
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	dest := filepath.Join(r.GotDir, packedRefsFile)
	tmp, err := os.CreateTemp(r.GotDir, ".tmp-packed-refs-*")
	if err != nil {
		return fmt.Errorf("pack refs: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(sb.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("pack refs: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("pack refs: close: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("pack refs: rename: %w", err)
	}

	for name := range loose {
		refPath := filepath.Join(r.GotDir, "refs", filepath.FromSlash(name))
		if err := os.Remove(refPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("pack refs: remove loose ref %q: %w", name, err)
		}
	}
	return nil
}
