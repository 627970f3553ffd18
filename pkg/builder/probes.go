package builder

import (
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/types"
)

// ExecProbes answers change-detection questions using git and the
// filesystem. It implements manifest.RevisionProbe.
type ExecProbes struct {
	FS types.FS
}

// NewProbes returns probes backed by the given filesystem.
func NewProbes(fsys types.FS) *ExecProbes {
	return &ExecProbes{FS: fsys}
}

// LatestRevision asks the remote for the commit hash at the tip of a
// branch. The ls-remote output is "<hash>\t<ref>", one line per match.
func (p *ExecProbes) LatestRevision(repositoryURL, branch string) (string, error) {
	out, err := exec.Command("git", "ls-remote", repositoryURL, branch).Output()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInternal, "git ls-remote against %s failed", repositoryURL)
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if line == "" {
		return "", errors.Newf(errors.ErrInternal, "repository %s has no branch %q", repositoryURL, branch)
	}
	hash, _, _ := strings.Cut(line, "\t")
	return hash, nil
}

// LatestModification walks a directory tree and returns the newest
// mtime found in it.
func (p *ExecProbes) LatestModification(path string) (time.Time, error) {
	info, err := p.FS.Stat(path)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.ErrInternal, "failed to stat %s", path)
	}
	latest := info.ModTime()
	if !info.IsDir() {
		return latest, nil
	}

	entries, err := p.FS.ReadDir(path)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.ErrInternal, "failed to list %s", path)
	}
	for _, entry := range entries {
		child, err := p.LatestModification(filepath.Join(path, entry.Name()))
		if err != nil {
			return time.Time{}, err
		}
		if child.After(latest) {
			latest = child
		}
	}
	return latest, nil
}
