package filecache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLinesReadsThroughOnMiss(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\nthree"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	lines, err := c.Lines("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 || lines[1] != "two" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestSnippetExtractsInclusiveRange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("l1\nl2\nl3\nl4\nl5"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	snippet, err := c.Snippet("a.txt", 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if snippet != "l2\nl3\nl4" {
		t.Fatalf("expected l2\\nl3\\nl4, got %q", snippet)
	}
}

func TestSnippetClampsOutOfRangeLines(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("l1\nl2"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	snippet, err := c.Snippet("a.txt", 1, 100)
	if err != nil {
		t.Fatal(err)
	}
	if snippet != "l1\nl2" {
		t.Fatalf("expected l1\\nl2, got %q", snippet)
	}
}

func TestLinesReturnsErrorForMissingFile(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Lines("missing.txt"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
