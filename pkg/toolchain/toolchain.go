// Package toolchain determines which channel and components a command
// runs against, and resolves invocation tokens to component pipelines.
package toolchain

import (
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/toolup/pkg/config"
	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/logging"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/paths"
	"github.com/arthur-debert/toolup/pkg/types"
)

// Source says where the current toolchain selection came from.
type Source int

const (
	// SourceProjectFile means a toolup-toolchain.toml was found in the
	// working directory or one of its ancestors.
	SourceProjectFile Source = iota

	// SourceDefault means the default pointer in the toolup home.
	SourceDefault

	// SourceBuiltin means neither exists and the built-in selection
	// applies.
	SourceBuiltin
)

func (s Source) String() string {
	switch s {
	case SourceProjectFile:
		return "project file"
	case SourceDefault:
		return "default pointer"
	default:
		return "builtin"
	}
}

// DefaultComponents is the component set installed when nothing
// narrows the selection.
var DefaultComponents = []string{"stdlib", "runtime", "vm", "compiler"}

// Toolchain is a channel selection plus the components it needs.
type Toolchain struct {
	Channel    manifest.UserChannel `toml:"channel"`
	Components []string             `toml:"components"`
}

// Builtin returns the fallback toolchain: stable with the default
// component set.
func Builtin() *Toolchain {
	return &Toolchain{
		Channel:    manifest.UserChannel{Kind: manifest.UserStable},
		Components: append([]string(nil), DefaultComponents...),
	}
}

// Current determines the toolchain in effect. A project file beats the
// default pointer, which beats the builtin.
func Current(cfg *config.Config, fsys types.FS) (*Toolchain, Source, error) {
	logger := logging.GetLogger("toolchain")

	if tc, path, err := fromProjectFile(cfg.WorkingDir, fsys); err != nil {
		return nil, SourceProjectFile, err
	} else if tc != nil {
		logger.Debug().Str("path", path).Msg("toolchain from project file")
		return tc, SourceProjectFile, nil
	}

	if tc := fromDefaultPointer(cfg.Paths(), fsys); tc != nil {
		logger.Debug().Msg("toolchain from default pointer")
		return tc, SourceDefault, nil
	}

	return Builtin(), SourceBuiltin, nil
}

// fromProjectFile walks up from dir looking for a toolchain file.
func fromProjectFile(dir string, fsys types.FS) (*Toolchain, string, error) {
	for {
		path := filepath.Join(dir, paths.ProjectFileName)
		if _, err := fsys.Stat(path); err == nil {
			tc, err := ReadFile(fsys, path)
			if err != nil {
				return nil, path, err
			}
			return tc, path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// fromDefaultPointer reads the default symlink in the toolup home. A
// pointer at the stable symlink selects stable; anything else selects
// the version the link basename names.
func fromDefaultPointer(p paths.Paths, fsys types.FS) *Toolchain {
	target, err := fsys.Readlink(p.DefaultPointer())
	if err != nil {
		return nil
	}
	name := filepath.Base(target)
	return &Toolchain{
		Channel:    manifest.ParseUserChannel(name),
		Components: append([]string(nil), DefaultComponents...),
	}
}

// toolchainFile is the on-disk shape: the selection nests under a
// [toolchain] table.
type toolchainFile struct {
	Toolchain Toolchain `toml:"toolchain"`
}

// ReadFile parses a toolup-toolchain.toml.
func ReadFile(fsys types.FS, path string) (*Toolchain, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrToolchainFile, "failed to read toolchain file %s", path)
	}
	var file toolchainFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, errors.ErrToolchainFile, "toolchain file %s is malformed", path)
	}
	tc := file.Toolchain
	if len(tc.Components) == 0 {
		tc.Components = append([]string(nil), DefaultComponents...)
	}
	return &tc, nil
}

// WriteFile writes a toolchain file for the current project.
func WriteFile(fsys types.FS, path string, tc *Toolchain) error {
	data, err := toml.Marshal(toolchainFile{Toolchain: *tc})
	if err != nil {
		return errors.Wrap(err, errors.ErrToolchainFile, "failed to encode toolchain file")
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrToolchainFile, "failed to write toolchain file %s", path)
	}
	return nil
}
