package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerifyCmdReportsLooseAndPackedCounts(t *testing.T) {
	dir := t.TempDir()
	initCmdFixture(t, dir)
	restore := chdirForTest(t, dir)
	defer restore()

	var gcOut bytes.Buffer
	gcCmd := newGcCmd()
	gcCmd.SetOut(&gcOut)
	gcCmd.SetErr(&gcOut)
	if err := gcCmd.Execute(); err != nil {
		t.Fatalf("gc Execute: %v\noutput:\n%s", err, gcOut.String())
	}

	var out bytes.Buffer
	verifyCmd := newVerifyCmd()
	verifyCmd.SetOut(&out)
	verifyCmd.SetErr(&out)
	if err := verifyCmd.Execute(); err != nil {
		t.Fatalf("verify Execute: %v\noutput:\n%s", err, out.String())
	}

	// 2 blobs + 1 tree + 1 commit, loose and packed after a non-destructive gc.
	if !strings.Contains(out.String(), "verified 4 loose object(s), 4 packed object(s) in 1 pack(s)") {
		t.Fatalf("verify output = %q", out.String())
	}
}

func TestVerifyCmdWithoutPacks(t *testing.T) {
	dir := t.TempDir()
	initCmdFixture(t, dir)
	restore := chdirForTest(t, dir)
	defer restore()

	var out bytes.Buffer
	verifyCmd := newVerifyCmd()
	verifyCmd.SetOut(&out)
	verifyCmd.SetErr(&out)
	if err := verifyCmd.Execute(); err != nil {
		t.Fatalf("verify Execute: %v\noutput:\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "verified 4 loose object(s), 0 packed object(s) in 0 pack(s)") {
		t.Fatalf("verify output = %q", out.String())
	}
}
