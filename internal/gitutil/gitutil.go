// Package gitutil wraps the system git binary for the HEAD SHA, diff,
// and remote origin queries the sync engine needs.
package gitutil

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Operations is the git surface the sync engine depends on. Defined as
// an interface so tests can substitute a fake without a real repository.
type Operations interface {
	// HeadSHA returns the current HEAD commit SHA, or ok=false if
	// repoPath is not a git repository.
	HeadSHA(ctx context.Context) (sha string, ok bool)

	// Diff classifies the changes between fromSHA and HEAD into
	// added/modified/deleted paths, relative to the repository root.
	Diff(ctx context.Context, fromSHA string) (added, modified, deleted []string, err error)

	// RemoteOriginURL returns the "origin" remote URL, or ok=false if
	// none is configured.
	RemoteOriginURL(ctx context.Context) (url string, ok bool)
}

type ops struct {
	repoPath string
}

// NewOperations returns the default Operations implementation, scoped
// to repoPath.
func NewOperations(repoPath string) Operations {
	return &ops{repoPath: repoPath}
}

func (o *ops) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = o.repoPath
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func (o *ops) HeadSHA(ctx context.Context) (string, bool) {
	sha, err := o.run(ctx, "rev-parse", "HEAD")
	if err != nil || sha == "" {
		return "", false
	}
	return sha, true
}

func (o *ops) RemoteOriginURL(ctx context.Context) (string, bool) {
	url, err := o.run(ctx, "remote", "get-url", "origin")
	if err != nil || url == "" {
		return "", false
	}
	return url, true
}

// Diff shells out to `git diff --name-status <fromSHA> HEAD` and
// classifies each entry by its A/M/D status letter. Renames (status
// "R100") are treated as a delete of the old path plus an add of the
// new path, since the sync engine tracks files by path, not by git's
// rename detection.
func (o *ops) Diff(ctx context.Context, fromSHA string) (added, modified, deleted []string, err error) {
	out, runErr := o.run(ctx, "diff", "--name-status", fromSHA, "HEAD")
	if runErr != nil {
		return nil, nil, nil, runErr
	}
	if out == "" {
		return nil, nil, nil, nil
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]

		switch {
		case strings.HasPrefix(status, "A"):
			added = append(added, fields[1])
		case strings.HasPrefix(status, "M"):
			modified = append(modified, fields[1])
		case strings.HasPrefix(status, "D"):
			deleted = append(deleted, fields[1])
		case strings.HasPrefix(status, "R"):
			if len(fields) >= 3 {
				deleted = append(deleted, fields[1])
				added = append(added, fields[2])
			}
		}
	}
	return added, modified, deleted, nil
}
