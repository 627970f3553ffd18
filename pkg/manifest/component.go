package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
)

// InstalledFile records what a component leaves behind in a sysroot:
// either an executable under bin/ or a library under lib/.
type InstalledFile struct {
	Name    string
	Library bool
}

// Artifact points at a prebuilt file that can be copied into a sysroot
// instead of building from source.
type Artifact struct {
	URI string `json:"uri"`
}

// Component is a single tool or library within a channel.
type Component struct {
	Name string

	// Source is the authority this channel pins the component to.
	Source Authority

	Features []string
	Requires []string

	// ToolchainSelector names the build toolchain handed to the
	// builder when compiling this component, e.g. "stable" or
	// "nightly-2025-03-01". Empty means the builder default.
	ToolchainSelector string

	// Installed overrides the default assumption that the component
	// installs an executable named after itself.
	Installed *InstalledFile

	// CallFormat is the pipeline the wrapper expands when this
	// component is invoked directly. Empty means just the executable.
	CallFormat []CommandStep

	// Aliases maps extra invocable names to their own pipelines.
	Aliases map[string][]CommandStep

	// Initialization is a one-time argv run after install, with the
	// component's executable prepended.
	Initialization []string

	// Initialized records whether the initialization run succeeded.
	Initialized bool

	Artifacts []Artifact
}

// InstalledFile returns what this component installs. Components with
// no explicit record install an executable named after themselves.
func (c *Component) InstalledFile() InstalledFile {
	if c.Installed != nil {
		return *c.Installed
	}
	return InstalledFile{Name: c.Name}
}

// PackageName returns the name the builder registered this component
// under, which is what cargo wants for an uninstall. Registry
// components go by their package, git and path components by their
// crate. The installed executable name is unrelated and often differs.
func (c *Component) PackageName() string {
	switch src := c.Source.(type) {
	case *Registry:
		if src.Package != "" {
			return src.Package
		}
		return c.Name
	case *Git:
		return src.CrateName
	case *LocalPath:
		return src.CrateName
	default:
		return c.Name
	}
}

// IsLibrary reports whether the component installs a library rather
// than an executable.
func (c *Component) IsLibrary() bool {
	return c.InstalledFile().Library
}

// ArtifactURI returns the first prebuilt artifact URI, or empty when
// the component must be built from source.
func (c *Component) ArtifactURI() string {
	if len(c.Artifacts) == 0 {
		return ""
	}
	return c.Artifacts[0].URI
}

// Equal reports structural equality over every manifest field. Cached
// change-detection state inside the authority is excluded, see
// Authority.Equal.
func (c *Component) Equal(other *Component) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Name != other.Name {
		return false
	}
	if (c.Source == nil) != (other.Source == nil) {
		return false
	}
	if c.Source != nil && !c.Source.Equal(other.Source) {
		return false
	}
	if !stringsEqual(c.Features, other.Features) || !stringsEqual(c.Requires, other.Requires) {
		return false
	}
	if c.ToolchainSelector != other.ToolchainSelector {
		return false
	}
	if c.InstalledFile() != other.InstalledFile() {
		return false
	}
	if !stepsEqual(c.CallFormat, other.CallFormat) {
		return false
	}
	if len(c.Aliases) != len(other.Aliases) {
		return false
	}
	for name, pipeline := range c.Aliases {
		otherPipeline, ok := other.Aliases[name]
		if !ok || !stepsEqual(pipeline, otherPipeline) {
			return false
		}
	}
	return stringsEqual(c.Initialization, other.Initialization)
}

// Clone returns a deep copy, safe to mutate independently.
func (c *Component) Clone() Component {
	out := *c
	out.Source = cloneAuthority(c.Source)
	out.Features = append([]string(nil), c.Features...)
	out.Requires = append([]string(nil), c.Requires...)
	if c.Installed != nil {
		installed := *c.Installed
		out.Installed = &installed
	}
	out.CallFormat = append([]CommandStep(nil), c.CallFormat...)
	if c.Aliases != nil {
		out.Aliases = make(map[string][]CommandStep, len(c.Aliases))
		for name, pipeline := range c.Aliases {
			out.Aliases[name] = append([]CommandStep(nil), pipeline...)
		}
	}
	out.Initialization = append([]string(nil), c.Initialization...)
	out.Artifacts = append([]Artifact(nil), c.Artifacts...)
	return out
}

func cloneAuthority(a Authority) Authority {
	switch src := a.(type) {
	case *Registry:
		out := *src
		return &out
	case *Git:
		out := *src
		switch target := src.Target.(type) {
		case *Branch:
			t := *target
			if target.LatestRevision != nil {
				rev := *target.LatestRevision
				t.LatestRevision = &rev
			}
			out.Target = &t
		case *Revision:
			t := *target
			out.Target = &t
		case *TagTarget:
			t := *target
			out.Target = &t
		}
		return &out
	case *LocalPath:
		out := *src
		if src.LastModification != nil {
			mtime := *src.LastModification
			out.LastModification = &mtime
		}
		return &out
	default:
		return a
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// componentJSON is the flattened wire shape. The authority carries no
// discriminator tag; its variant is recovered from which keys are
// present.
type componentJSON struct {
	Name string `json:"name"`

	Path             string         `json:"path,omitempty"`
	RepositoryURL    string         `json:"repository_url,omitempty"`
	CrateName        string         `json:"crate_name,omitempty"`
	Target           *gitTargetJSON `json:"target,omitempty"`
	LastModification *int64         `json:"last_modification,omitempty"`
	Package          string         `json:"package,omitempty"`
	Version          string         `json:"version,omitempty"`

	Features            []string                 `json:"features,omitempty"`
	Requires            []string                 `json:"requires,omitempty"`
	ToolchainSelector   string                   `json:"rustup_channel,omitempty"`
	InstalledExecutable string                   `json:"installed_executable,omitempty"`
	InstalledLibrary    string                   `json:"installed_library,omitempty"`
	CallFormat          []CommandStep            `json:"call_format,omitempty"`
	Aliases             map[string][]CommandStep `json:"aliases,omitempty"`
	Initialization      []string                 `json:"initialization,omitempty"`
	Initialized         bool                     `json:"initialized,omitempty"`
	Artifacts           []Artifact               `json:"artifacts,omitempty"`
}

type gitTargetJSON struct {
	Branch         string  `json:"branch,omitempty"`
	LatestRevision *string `json:"latest_revision,omitempty"`
	Rev            string  `json:"rev,omitempty"`
	Tag            string  `json:"tag,omitempty"`
}

// MarshalJSON flattens the authority into the component object.
func (c Component) MarshalJSON() ([]byte, error) {
	out := componentJSON{
		Name:              c.Name,
		Features:          c.Features,
		Requires:          c.Requires,
		ToolchainSelector: c.ToolchainSelector,
		CallFormat:        c.CallFormat,
		Aliases:           c.Aliases,
		Initialization:    c.Initialization,
		Initialized:       c.Initialized,
		Artifacts:         c.Artifacts,
	}

	switch src := c.Source.(type) {
	case *Registry:
		out.Package = src.Package
		if src.Version != nil {
			out.Version = src.Version.String()
		}
	case *Git:
		out.RepositoryURL = src.RepositoryURL
		out.CrateName = src.CrateName
		switch target := src.Target.(type) {
		case *Branch:
			out.Target = &gitTargetJSON{Branch: target.Name, LatestRevision: target.LatestRevision}
		case *Revision:
			out.Target = &gitTargetJSON{Rev: target.Hash}
		case *TagTarget:
			out.Target = &gitTargetJSON{Tag: target.Name}
		}
	case *LocalPath:
		out.Path = src.Path
		out.CrateName = src.CrateName
		if src.LastModification != nil {
			secs := src.LastModification.Unix()
			out.LastModification = &secs
		}
	case nil:
		return nil, fmt.Errorf("component %q has no authority", c.Name)
	}

	if c.Installed != nil {
		if c.Installed.Library {
			out.InstalledLibrary = c.Installed.Name
		} else {
			out.InstalledExecutable = c.Installed.Name
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON recovers the authority variant by probing keys in
// order: path wins over repository_url, which wins over version.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw componentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("component is missing a name")
	}

	var source Authority
	switch {
	case raw.Path != "":
		local := &LocalPath{Path: raw.Path, CrateName: raw.CrateName}
		if raw.LastModification != nil {
			mtime := time.Unix(*raw.LastModification, 0).UTC()
			local.LastModification = &mtime
		}
		source = local
	case raw.RepositoryURL != "":
		git := &Git{RepositoryURL: raw.RepositoryURL, CrateName: raw.CrateName}
		target, err := decodeGitTarget(raw.Target)
		if err != nil {
			return fmt.Errorf("component %q: %w", raw.Name, err)
		}
		git.Target = target
		source = git
	case raw.Version != "":
		pkg := raw.Package
		if pkg == "" {
			pkg = raw.Name
		}
		version, err := semver.NewVersion(raw.Version)
		if err != nil {
			return fmt.Errorf("component %q has invalid version %q: %w", raw.Name, raw.Version, err)
		}
		source = &Registry{Package: pkg, Version: version}
	default:
		return fmt.Errorf("component %q has none of the keys %q, %q or %q", raw.Name, "path", "repository_url", "version")
	}

	var installed *InstalledFile
	switch {
	case raw.InstalledLibrary != "":
		installed = &InstalledFile{Name: raw.InstalledLibrary, Library: true}
	case raw.InstalledExecutable != "":
		installed = &InstalledFile{Name: raw.InstalledExecutable}
	}

	*c = Component{
		Name:              raw.Name,
		Source:            source,
		Features:          raw.Features,
		Requires:          raw.Requires,
		ToolchainSelector: raw.ToolchainSelector,
		Installed:         installed,
		CallFormat:        raw.CallFormat,
		Aliases:           raw.Aliases,
		Initialization:    raw.Initialization,
		Initialized:       raw.Initialized,
		Artifacts:         raw.Artifacts,
	}
	return nil
}

func decodeGitTarget(raw *gitTargetJSON) (GitTarget, error) {
	if raw == nil {
		return &Branch{Name: "main"}, nil
	}
	switch {
	case raw.Branch != "":
		return &Branch{Name: raw.Branch, LatestRevision: raw.LatestRevision}, nil
	case raw.Rev != "":
		return &Revision{Hash: raw.Rev}, nil
	case raw.Tag != "":
		return &TagTarget{Name: raw.Tag}, nil
	default:
		return nil, fmt.Errorf("git target must have one of the keys %q, %q or %q", "branch", "rev", "tag")
	}
}
