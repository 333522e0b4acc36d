package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDiscoversCodeAndDocumentFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print('hi')\n")
	writeFile(t, root, "README.md", "# Title\n")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}\n")
	writeFile(t, root, "image.bin", "\x00\x01\x02binarydata")

	s, err := New(Options{RootDir: root, ExcludePatterns: []string{"node_modules/**"}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	files, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	var relPaths []string
	for _, f := range files {
		relPaths = append(relPaths, f.RelativePath)
	}

	want := map[string]bool{"main.py": true, "README.md": true}
	seen := map[string]bool{}
	for _, p := range relPaths {
		seen[p] = true
	}
	for p := range want {
		if !seen[p] {
			t.Errorf("expected to discover %q, got %v", p, relPaths)
		}
	}
	if seen["node_modules/pkg/index.js"] {
		t.Error("expected node_modules to be excluded")
	}
	if seen["image.bin"] {
		t.Error("expected a binary file to be skipped")
	}
}

func TestScanSkipsFilesOverMaxSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.py", string(make([]byte, 1024)))

	s, err := New(Options{RootDir: root, MaxFileBytes: 100})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	files, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected oversized file to be skipped, got %v", files)
	}
}
