package lifecycle

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/paths"
	"github.com/arthur-debert/toolup/pkg/toolchain"
)

// Set pins the current project to a channel by writing a
// toolup-toolchain.toml in the working directory. The component list
// comes from the channel's completion marker, which records exactly
// what got installed.
func (e *Env) Set(selection manifest.UserChannel) (string, error) {
	local, err := e.LocalManifest()
	if err != nil {
		return "", err
	}
	installed := local.Channel(selection)
	if installed == nil {
		return "", errors.Newf(errors.ErrNotInstalled, "channel %s is not installed, try: toolup install %s", selection, selection)
	}

	version := installed.Name.String()
	marker, err := e.FS.ReadFile(e.Paths().CompleteMarker(version))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotInstalled, "channel %s has no completed installation", version)
	}
	var components []string
	for _, line := range strings.Split(string(marker), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			components = append(components, line)
		}
	}

	tc := &toolchain.Toolchain{Channel: selection, Components: components}
	path := filepath.Join(e.Config.WorkingDir, paths.ProjectFileName)
	if err := toolchain.WriteFile(e.FS, path, tc); err != nil {
		return "", err
	}
	return path, nil
}
