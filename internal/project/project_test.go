package project

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestProjectIDUsesGitOriginWhenPresent(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("remote", "add", "origin", "https://github.com/example/repo.git")

	id := ProjectID(context.Background(), root)
	if id == "" || len(id) != 16 {
		t.Fatalf("expected a 16-char digest, got %q", id)
	}

	// Same origin from a different clone path must hash identically.
	other := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = other
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v\n%s", err, out)
	}
	cmd = exec.Command("git", "remote", "add", "origin", "https://github.com/example/repo.git")
	cmd.Dir = other
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git remote add failed: %v\n%s", err, out)
	}
	otherID := ProjectID(context.Background(), other)
	if id != otherID {
		t.Fatalf("expected identical origin to hash identically: %q != %q", id, otherID)
	}
}

func TestProjectIDFallsBackToPathHashWithoutOrigin(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	root := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v\n%s", err, out)
	}

	id := ProjectID(context.Background(), root)
	if id == "" || len(id) != 16 {
		t.Fatalf("expected a 16-char digest, got %q", id)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		t.Fatal(err)
	}
	if id != ProjectID(context.Background(), abs) {
		t.Fatal("expected the path-hash fallback to be stable across equivalent paths")
	}
}

func TestNormalizeOriginURLStripsSchemeAndSuffix(t *testing.T) {
	cases := map[string]string{
		"https://github.com/example/repo.git": "github.com/example/repo",
		"http://github.com/example/repo.git":  "github.com/example/repo",
		"git@github.com:example/repo.git":     "github.com/example/repo",
		"https://github.com/example/repo":     "github.com/example/repo",
	}
	for in, want := range cases {
		if got := normalizeOriginURL(in); got != want {
			t.Errorf("normalizeOriginURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeProjectIDLowercasesAndCollapsesInvalidChars(t *testing.T) {
	got := NormalizeProjectID("My Project_Name!!")
	if got != "my-project-name" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeProjectIDTrimsLeadingAndTrailingDashes(t *testing.T) {
	got := NormalizeProjectID("--hello--")
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeProjectIDEmptyReturnsDefault(t *testing.T) {
	if got := NormalizeProjectID("!!!"); got != "default-project" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeProjectIDTruncatesOverLongIDs(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := NormalizeProjectID(long)
	if len(got) > 63 {
		t.Fatalf("expected normalized id to be at most 63 chars, got %d: %q", len(got), got)
	}
	if !strings.HasPrefix(got, strings.Repeat("a", 50)+"-") {
		t.Fatalf("expected truncated id to keep a 50-char prefix plus a digest suffix, got %q", got)
	}
}

func TestNormalizeProjectIDIsDeterministic(t *testing.T) {
	long := strings.Repeat("b", 100)
	if NormalizeProjectID(long) != NormalizeProjectID(long) {
		t.Fatal("expected NormalizeProjectID to be deterministic")
	}
}
