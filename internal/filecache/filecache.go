// Package filecache caches file contents (split into lines) for the
// formatter's "snippet"/"content" expansions, so repeated expansions of
// chunks from the same file don't re-read it from disk.
package filecache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/maypok86/otter"

	"github.com/codecontext/codecontext/internal/errs"
)

// MaxWeight bounds the cache's total approximate memory cost in bytes.
const MaxWeight = 50 * 1024 * 1024

// bytesPerLine approximates a cached line's memory cost for otter's
// weight-based eviction.
const bytesPerLine = 100

// Cache serves a project's file contents as line slices, evicting by
// approximate memory weight rather than entry count.
type Cache struct {
	rootDir string
	lines   otter.Cache[string, []string]
}

// New builds a Cache rooted at rootDir (every path handed to Lines is
// resolved relative to it).
func New(rootDir string) (*Cache, error) {
	cache, err := otter.MustBuilder[string, []string](MaxWeight).
		Cost(func(key string, value []string) uint32 {
			return uint32(len(value) * bytesPerLine)
		}).
		Build()
	if err != nil {
		return nil, errs.Wrap(errs.Storage, "building file cache", err)
	}
	return &Cache{rootDir: rootDir, lines: cache}, nil
}

// Lines returns relPath's content split on "\n", reading through to
// disk on a cache miss.
func (c *Cache) Lines(relPath string) ([]string, error) {
	if lines, ok := c.lines.Get(relPath); ok {
		return lines, nil
	}

	content, err := os.ReadFile(filepath.Join(c.rootDir, relPath))
	if err != nil {
		return nil, errs.Wrap(errs.Storage, "reading file for cache", err)
	}

	lines := strings.Split(string(content), "\n")
	c.lines.Set(relPath, lines)
	return lines, nil
}

// Snippet returns the 1-indexed, inclusive [startLine, endLine] slice of
// relPath's content, joined back into a single string.
func (c *Cache) Snippet(relPath string, startLine, endLine int) (string, error) {
	lines, err := c.Lines(relPath)
	if err != nil {
		return "", err
	}

	from := startLine - 1
	if from < 0 {
		from = 0
	}
	to := endLine
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return "", nil
	}
	return strings.Join(lines[from:to], "\n"), nil
}

// Close releases cache resources.
func (c *Cache) Close() {
	c.lines.Close()
}
