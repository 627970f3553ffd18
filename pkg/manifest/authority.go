package manifest

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Authority identifies where a component's code comes from and which
// version of it a channel pins. Exactly one of Registry, Git or
// LocalPath backs every component.
type Authority interface {
	// Equal reports whether two authorities pin the same source.
	// Cached change-detection state (git revisions, file mtimes) is
	// ignored so that a manifest refreshed upstream still compares
	// equal to the locally installed copy.
	Equal(other Authority) bool

	String() string

	isAuthority()
}

// Registry pins a component to a published package version.
type Registry struct {
	Package string
	Version *semver.Version
}

func (r *Registry) isAuthority() {}

func (r *Registry) Equal(other Authority) bool {
	o, ok := other.(*Registry)
	if !ok {
		return false
	}
	if r.Package != o.Package {
		return false
	}
	if (r.Version == nil) != (o.Version == nil) {
		return false
	}
	return r.Version == nil || r.Version.String() == o.Version.String()
}

func (r *Registry) String() string {
	if r.Version == nil {
		return r.Package
	}
	return fmt.Sprintf("%s@%s", r.Package, r.Version)
}

// Git pins a component to a repository plus a target within it.
type Git struct {
	RepositoryURL string
	CrateName     string
	Target        GitTarget
}

func (g *Git) isAuthority() {}

func (g *Git) Equal(other Authority) bool {
	o, ok := other.(*Git)
	if !ok {
		return false
	}
	if g.RepositoryURL != o.RepositoryURL || g.CrateName != o.CrateName {
		return false
	}
	if (g.Target == nil) != (o.Target == nil) {
		return false
	}
	return g.Target == nil || g.Target.Equal(o.Target)
}

func (g *Git) String() string {
	return fmt.Sprintf("%s (%s)", g.RepositoryURL, g.Target)
}

// LocalPath pins a component to a directory on the local filesystem.
// LastModification caches the newest mtime observed under the path and
// is used only for change detection.
type LocalPath struct {
	Path             string
	CrateName        string
	LastModification *time.Time
}

func (p *LocalPath) isAuthority() {}

func (p *LocalPath) Equal(other Authority) bool {
	o, ok := other.(*LocalPath)
	if !ok {
		return false
	}
	return p.Path == o.Path && p.CrateName == o.CrateName
}

func (p *LocalPath) String() string {
	return p.Path
}

// GitTarget narrows a Git authority to a branch tip, an exact revision
// or a tag.
type GitTarget interface {
	Equal(other GitTarget) bool
	String() string
	isGitTarget()
}

// Branch tracks the tip of a named branch. LatestRevision caches the
// commit hash observed at install time and is used only for change
// detection; two Branch targets with the same name are equal even when
// their cached revisions differ.
type Branch struct {
	Name           string
	LatestRevision *string
}

func (b *Branch) isGitTarget() {}

func (b *Branch) Equal(other GitTarget) bool {
	o, ok := other.(*Branch)
	return ok && b.Name == o.Name
}

func (b *Branch) String() string {
	return "branch " + b.Name
}

// Revision pins an exact commit hash.
type Revision struct {
	Hash string
}

func (r *Revision) isGitTarget() {}

func (r *Revision) Equal(other GitTarget) bool {
	o, ok := other.(*Revision)
	return ok && r.Hash == o.Hash
}

func (r *Revision) String() string {
	return "rev " + r.Hash
}

// TagTarget pins a repository tag.
type TagTarget struct {
	Name string
}

func (t *TagTarget) isGitTarget() {}

func (t *TagTarget) Equal(other GitTarget) bool {
	o, ok := other.(*TagTarget)
	return ok && t.Name == o.Name
}

func (t *TagTarget) String() string {
	return "tag " + t.Name
}

// RevisionProbe answers questions about the world outside the
// manifest: the current tip of a remote branch and the newest
// modification time under a local path. Implementations live in the
// builder package; tests substitute fakes.
type RevisionProbe interface {
	// LatestRevision returns the commit hash at the tip of the named
	// branch of the given repository.
	LatestRevision(repositoryURL, branch string) (string, error)

	// LatestModification returns the newest modification time of any
	// file under path.
	LatestModification(path string) (time.Time, error)
}

// UpToDate reports whether the locally recorded authority still
// matches upstream. For Registry and pinned Git targets this is plain
// equality; for branch tips and local paths the probe consults the
// live source and compares it against the cached state. Probe
// failures are never fatal: an unanswerable check counts as changed,
// biasing the caller toward reinstalling rather than silently
// skipping an update. A missing cache does the same.
func (c *Component) UpToDate(upstream *Component, probe RevisionProbe) bool {
	if !c.Equal(upstream) {
		return false
	}
	switch src := c.Source.(type) {
	case *Git:
		branch, ok := src.Target.(*Branch)
		if !ok {
			return true
		}
		if probe == nil {
			return true
		}
		if branch.LatestRevision == nil {
			return false
		}
		tip, err := probe.LatestRevision(src.RepositoryURL, branch.Name)
		if err != nil {
			return false
		}
		return tip == *branch.LatestRevision
	case *LocalPath:
		if probe == nil {
			return true
		}
		if src.LastModification == nil {
			return false
		}
		latest, err := probe.LatestModification(src.Path)
		if err != nil {
			return false
		}
		return !latest.After(*src.LastModification)
	default:
		return true
	}
}
