// Package state persists the sync engine's per-repository checkpoint:
// the last IndexState snapshot, the per-file checksum map used to skip
// unchanged files on a full re-index, and the relationship graph edges
// the retriever needs for graph expansion — the store persists chunks
// but not the CALLS/REFERENCES/INHERITS/CONTAINS edge list itself, so
// this file is where a later `search` process finds them.
//
// The checkpoint lives at "<repoRoot>/.codecontext/state.json", inside
// the directory internal/scanner already excludes from its own walk,
// and is written atomically (temp file + rename): a missing file is
// not an error, it just means "never synced".
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/model"
)

// DirName is the per-repository working directory CodeContext owns.
const DirName = ".codecontext"

const fileName = "state.json"

// State is the full persisted checkpoint for one repository.
type State struct {
	Index         model.IndexState
	FileChecksums map[string]string // relative path -> content checksum

	// RelationshipsByFile groups relationship edges by the relative path
	// of the file that produced them, so an incremental sync can drop a
	// changed file's stale edges by key before re-adding its fresh ones.
	RelationshipsByFile map[string][]model.Relationship
}

// Path returns the checkpoint file path for a repository rooted at
// repoRoot.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, DirName, fileName)
}

// Load reads the checkpoint for repoRoot. A repository that has never
// been synced returns a zero-value State and no error.
func Load(repoRoot string) (*State, error) {
	data, err := os.ReadFile(Path(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return &State{FileChecksums: map[string]string{}}, nil
		}
		return nil, errs.Wrap(errs.Storage, "failed to read sync state", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.Wrap(errs.Storage, "failed to parse sync state", err)
	}
	if s.FileChecksums == nil {
		s.FileChecksums = map[string]string{}
	}
	if s.RelationshipsByFile == nil {
		s.RelationshipsByFile = map[string][]model.Relationship{}
	}
	return &s, nil
}

// Save atomically writes s as repoRoot's checkpoint, creating
// "<repoRoot>/.codecontext" if needed.
func Save(repoRoot string, s State) error {
	dir := filepath.Join(repoRoot, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.Storage, "failed to create sync state directory", err)
	}

	if s.FileChecksums == nil {
		s.FileChecksums = map[string]string{}
	}
	if s.RelationshipsByFile == nil {
		s.RelationshipsByFile = map[string][]model.Relationship{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Storage, "failed to marshal sync state", err)
	}

	finalPath := Path(repoRoot)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errs.Wrap(errs.Storage, "failed to write sync state", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.Storage, "failed to finalize sync state", err)
	}
	return nil
}

// Unchanged reports whether relPath's current checksum matches what was
// recorded at the last successful sync.
func (s *State) Unchanged(relPath, checksum string) bool {
	if s == nil {
		return false
	}
	return s.FileChecksums[relPath] == checksum
}

// Checksums converts the checkpoint's map into the model's slice form,
// sorted by path for deterministic output (e.g. the `status` command).
func (s *State) Checksums() []model.FileChecksum {
	out := make([]model.FileChecksum, 0, len(s.FileChecksums))
	for path, sum := range s.FileChecksums {
		out = append(out, model.FileChecksum{RelativePath: path, Checksum: sum})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelativePath < out[j].RelativePath })
	return out
}

// SetChecksums replaces the checkpoint's checksum map from the model's
// slice form.
func (s *State) SetChecksums(checksums []model.FileChecksum) {
	m := make(map[string]string, len(checksums))
	for _, c := range checksums {
		m[c.RelativePath] = c.Checksum
	}
	s.FileChecksums = m
}

// AllRelationships flattens RelationshipsByFile into the single slice
// internal/retriever.Search expects.
func (s *State) AllRelationships() []model.Relationship {
	var all []model.Relationship
	for _, rels := range s.RelationshipsByFile {
		all = append(all, rels...)
	}
	return all
}
