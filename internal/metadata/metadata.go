// Package metadata maintains the per-project metadata.json side file
// that backs `list-projects`/`status`/`delete-project`: a small JSON
// record living alongside a project's store data, independent of the
// store itself so the CLI can enumerate projects without opening every
// project's database.
//
// Grounded 1:1 on the original's utils/metadata.py: one metadata.json
// per project directory under a shared data root, written on every
// successful index, read back by scanning that root's subdirectories.
package metadata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/codecontext/codecontext/internal/config"
	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/gitutil"
)

// Metadata is one project's registry entry.
type Metadata struct {
	ProjectID  string    `json:"project_id"`
	Name       string    `json:"name"`
	GitOrigin  string    `json:"git_origin,omitempty"`
	SourcePath string    `json:"source_path"`
	IndexedAt  time.Time `json:"indexed_at"`
	LastUsed   time.Time `json:"last_used"`
}

// DataDir returns "<home>/.codecontext/data", the root directory
// holding one subdirectory per project.
func DataDir() (string, error) {
	configDir, err := config.GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "data"), nil
}

// ProjectDir returns the data directory for a single project.
func ProjectDir(projectID string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, projectID), nil
}

func metadataPath(projectID string) (string, error) {
	dir, err := ProjectDir(projectID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "metadata.json"), nil
}

// Update writes (or overwrites) projectID's metadata.json, stamping
// IndexedAt and LastUsed to now, and resolving the git remote origin
// (if any) via internal/gitutil. Called after every successful sync.
func Update(projectID, name, repoPath string, now time.Time) error {
	dir, err := ProjectDir(projectID)
	if err != nil {
		return errs.Wrap(errs.Configuration, "failed to resolve project data directory", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.Storage, "failed to create project data directory", err)
	}

	existing, loadErr := Get(projectID)
	indexedAt := now
	if loadErr == nil && existing != nil && !existing.IndexedAt.IsZero() {
		indexedAt = existing.IndexedAt
	}

	meta := Metadata{
		ProjectID:  projectID,
		Name:       name,
		SourcePath: repoPath,
		IndexedAt:  indexedAt,
		LastUsed:   now,
	}
	if origin, ok := gitutil.NewOperations(repoPath).RemoteOriginURL(context.Background()); ok {
		meta.GitOrigin = origin
	}

	return write(projectID, meta)
}

// Touch updates only LastUsed, leaving the rest of the record intact.
// Used when a project is searched but not re-indexed.
func Touch(projectID string, now time.Time) error {
	existing, err := Get(projectID)
	if err != nil {
		return err
	}
	existing.LastUsed = now
	return write(projectID, *existing)
}

func write(projectID string, meta Metadata) error {
	dir, err := ProjectDir(projectID)
	if err != nil {
		return errs.Wrap(errs.Configuration, "failed to resolve project data directory", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.Storage, "failed to create project data directory", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Storage, "failed to marshal project metadata", err)
	}

	finalPath := filepath.Join(dir, "metadata.json")
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errs.Wrap(errs.Storage, "failed to write project metadata", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.Storage, "failed to finalize project metadata", err)
	}
	return nil
}

// Get reads projectID's metadata.json, returning a ProjectNotFound
// error when the project has never been indexed.
func Get(projectID string) (*Metadata, error) {
	path, err := metadataPath(projectID)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "failed to resolve project metadata path", err)
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, errs.ProjectNotFoundError(projectID, nil)
		}
		return nil, errs.Wrap(errs.Storage, "failed to read project metadata", readErr)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errs.Wrap(errs.Storage, "failed to parse project metadata", err)
	}
	return &meta, nil
}

// List enumerates every project with a metadata.json under DataDir, in
// no particular order. A missing DataDir is treated as "no projects",
// not an error.
func List() ([]Metadata, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "failed to resolve project data directory", err)
	}

	entries, readErr := os.ReadDir(dataDir)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.Storage, "failed to list project data directory", readErr)
	}

	var projects []Metadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, getErr := Get(entry.Name())
		if getErr != nil {
			continue // not-yet-finalized or corrupt entry, skip rather than fail the whole listing
		}
		projects = append(projects, *meta)
	}
	return projects, nil
}

// Delete removes a project's entire data directory (metadata.json plus
// whatever store files live alongside it).
func Delete(projectID string) error {
	dir, err := ProjectDir(projectID)
	if err != nil {
		return errs.Wrap(errs.Configuration, "failed to resolve project data directory", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return errs.Wrap(errs.Storage, "failed to delete project data", err)
	}
	return nil
}
