package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCmdCreatesRepository(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "project")

	var out bytes.Buffer
	cmd := newInitCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init Execute: %v\noutput:\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "initialized empty repository") {
		t.Fatalf("init output = %q", out.String())
	}

	for _, sub := range []string{"objects", filepath.Join("refs", "heads"), filepath.Join("refs", "tags")} {
		if _, err := os.Stat(filepath.Join(target, ".got", sub)); err != nil {
			t.Errorf("missing %s: %v", sub, err)
		}
	}
}

func TestInitCmdRefusesExistingRepository(t *testing.T) {
	dir := t.TempDir()
	initCmdFixture(t, dir)

	cmd := newInitCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{dir})
	if err := cmd.Execute(); err == nil {
		t.Error("init over an existing repository should fail")
	}
}
