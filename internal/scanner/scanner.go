// Package scanner discovers the code and document files a sync pass
// should index: include/exclude glob matching, size gating, and
// extension-based code-vs-document classification, walking the tree
// once with patterns compiled up front rather than re-parsed per file.
package scanner

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/codecontext/codecontext/internal/parsers"
)

// documentExtensions are the non-code extensions the scanner recognizes
// as documents: markdown and the configuration formats docparse covers.
var documentExtensions = map[string]bool{
	".md": true, ".markdown": true,
	".yaml": true, ".yml": true, ".json": true, ".toml": true, ".properties": true,
}

// IsDocumentPath reports whether path's extension classifies it as a
// document rather than code, the same rule Scan applies internally —
// exported so callers building a File outside of a full Scan (e.g. the
// sync engine resolving a git-reported path) can classify consistently.
func IsDocumentPath(path string) bool {
	return documentExtensions[strings.ToLower(filepath.Ext(path))]
}

// Options configures one scan pass.
type Options struct {
	RootDir         string
	IncludePatterns []string
	ExcludePatterns []string
	MaxFileBytes    int64
}

// DefaultMaxFileBytes bounds a single scanned file, keeping pathological
// inputs (generated code, data dumps) from blowing up parse time and
// storage payload size.
const DefaultMaxFileBytes = 2 << 20 // 2 MiB

// Scanner walks a root directory and classifies files as code or
// document, applying glob filters, size gating, and a binary-content
// sniff.
type Scanner struct {
	rootDir      string
	include      []glob.Glob
	exclude      []glob.Glob
	maxFileBytes int64
}

// New compiles the scanner's include/exclude glob patterns.
func New(opts Options) (*Scanner, error) {
	s := &Scanner{rootDir: opts.RootDir, maxFileBytes: opts.MaxFileBytes}
	if s.maxFileBytes <= 0 {
		s.maxFileBytes = DefaultMaxFileBytes
	}

	for _, pattern := range opts.IncludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		s.include = append(s.include, g)
	}
	for _, pattern := range opts.ExcludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		s.exclude = append(s.exclude, g)
	}
	return s, nil
}

// File is one discovered, gated file ready for parsing.
type File struct {
	AbsolutePath string
	RelativePath string
	IsDocument   bool // false means code, gated by parsers.LanguageForExtension
}

// Scan walks the root directory and returns every file that passes the
// include/exclude filters, the size gate, and the binary sniff.
func (s *Scanner) Scan() ([]File, error) {
	var files []File

	err := filepath.WalkDir(s.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(s.rootDir, path)
		if relErr != nil {
			return relErr
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if s.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are skipped entirely rather than followed, to avoid
		// escaping the repository root or looping on a cyclic link.
		if entry.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if s.shouldIgnore(relPath) || !s.matchesInclude(relPath) {
			return nil
		}

		info, statErr := entry.Info()
		if statErr != nil {
			return statErr
		}
		if info.Size() > s.maxFileBytes {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		isDoc := documentExtensions[ext]
		if !isDoc && parsers.LanguageForExtension(ext) == "" {
			return nil
		}

		if isBinary(path) {
			return nil
		}

		files = append(files, File{AbsolutePath: path, RelativePath: relPath, IsDocument: isDoc})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Scanner) shouldIgnore(relPath string) bool {
	if relPath == ".codecontext" || strings.HasPrefix(relPath, ".codecontext/") {
		return true
	}
	if s.matchesAny(relPath, s.exclude) {
		return true
	}
	return s.matchesAny(relPath+"/**", s.exclude)
}

func (s *Scanner) matchesInclude(relPath string) bool {
	if len(s.include) == 0 {
		return true
	}
	return s.matchesAny(relPath, s.include)
}

// matchesAny also tries path with a leading "/", so that a "**/"-prefixed
// pattern matches a file at the repository root as well.
func (s *Scanner) matchesAny(path string, patterns []glob.Glob) bool {
	for _, p := range patterns {
		if p.Match(path) || p.Match("/"+path) {
			return true
		}
	}
	return false
}

// isBinary sniffs the first 512 bytes of a file for a NUL byte, the same
// heuristic git itself uses to classify a file as binary.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) != -1
}
