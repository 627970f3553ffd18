package lifecycle

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/toolup/pkg/builder"
	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/logging"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/paths"
)

// Install materializes a channel into its own sysroot. The selection
// is resolved against the upstream manifest; a non-empty component
// list narrows the channel to a subset. Returns user-facing warnings
// for non-fatal oddities.
func (e *Env) Install(selection manifest.UserChannel, components []string) ([]string, error) {
	logger := logging.GetLogger("install")
	var warnings []string

	if err := e.EnsureHome(); err != nil {
		return nil, err
	}

	upstream, err := e.UpstreamManifest()
	if err != nil {
		return nil, err
	}
	ch := upstream.Channel(selection)
	if ch == nil {
		return nil, errors.Newf(errors.ErrChannelNotFound, "channel %s not found upstream, is it published?", selection)
	}

	target := ch.Clone()
	if len(components) > 0 {
		subset, subsetWarnings := ch.Subset(components)
		warnings = append(warnings, subsetWarnings...)
		target = subset
	}

	version := target.Name.String()
	if e.IsChannelComplete(version) {
		return warnings, errors.Newf(errors.ErrAlreadyInstalled, "channel %s is already installed, use update instead", version)
	}

	p := e.Paths()
	sysroot := p.ChannelDir(version)
	for _, sub := range paths.SysrootDirs {
		if err := e.FS.MkdirAll(filepath.Join(sysroot, sub), 0755); err != nil {
			return warnings, errors.Wrapf(err, errors.ErrDirCreate, "failed to create sysroot directory %s", sub)
		}
	}

	e.refreshAuthorityCaches(target)

	if upstream.IsLatestStable(ch) {
		alias := manifest.Stable()
		target.Alias = &alias
	} else if target.Alias != nil && target.Alias.IsStable() {
		target.Alias = nil
	}

	// The snapshot goes down before the build so a crashed install
	// can still be cleaned up.
	if err := e.writeSnapshot(target, version); err != nil {
		return warnings, err
	}

	script, err := builder.GenerateScript(target)
	if err != nil {
		return warnings, err
	}
	scriptPath := p.InstallScript(version)
	if err := e.FS.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		return warnings, errors.Wrapf(err, errors.ErrFileWrite, "failed to write install script %s", scriptPath)
	}

	if err := e.Builder.Install(sysroot, scriptPath); err != nil {
		return warnings, err
	}

	if upstream.IsLatestStable(ch) {
		if err := e.replaceSymlink(p.StablePointer(), sysroot); err != nil {
			return warnings, err
		}
	}

	warnings = append(warnings, e.initializeComponents(target, version)...)

	local, err := e.LocalManifest()
	if err != nil {
		return warnings, err
	}
	local.AddChannel(*target)
	if err := e.SaveLocalManifest(local); err != nil {
		return warnings, err
	}

	logger.Info().Str("channel", version).Msg("channel installed")
	return warnings, nil
}

// refreshAuthorityCaches captures the current branch tips and local
// modification times so later updates can tell whether these sources
// moved. Probe failures clear the cache instead of aborting, which
// makes the next update check assume the component changed.
func (e *Env) refreshAuthorityCaches(ch *manifest.Channel) {
	if e.Probes == nil {
		return
	}
	logger := logging.GetLogger("install")
	for i := range ch.Components {
		switch src := ch.Components[i].Source.(type) {
		case *manifest.Git:
			branch, ok := src.Target.(*manifest.Branch)
			if !ok {
				continue
			}
			tip, err := e.Probes.LatestRevision(src.RepositoryURL, branch.Name)
			if err != nil {
				logger.Warn().Err(err).Str("component", ch.Components[i].Name).Msg("could not record branch tip")
				branch.LatestRevision = nil
				continue
			}
			branch.LatestRevision = &tip
		case *manifest.LocalPath:
			mtime, err := e.Probes.LatestModification(src.Path)
			if err != nil {
				logger.Warn().Err(err).Str("component", ch.Components[i].Name).Msg("could not record modification time")
				src.LastModification = nil
				continue
			}
			src.LastModification = &mtime
		}
	}
}

// writeSnapshot records the channel exactly as installed inside its
// sysroot.
func (e *Env) writeSnapshot(ch *manifest.Channel, version string) error {
	data, err := json.MarshalIndent(ch, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to encode channel snapshot")
	}
	path := e.Paths().Snapshot(version)
	if err := e.FS.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write channel snapshot %s", path)
	}
	return nil
}

// initializeComponents runs each component's one-time initialization.
// Failures do not abort the install, the component just stays
// uninitialized and the failure surfaces as a warning.
func (e *Env) initializeComponents(ch *manifest.Channel, version string) []string {
	logger := logging.GetLogger("install")
	p := e.Paths()
	var warnings []string

	for i := range ch.Components {
		comp := &ch.Components[i]
		if len(comp.Initialization) == 0 || comp.Initialized || comp.IsLibrary() {
			continue
		}
		bin := filepath.Join(p.ChannelBinDir(version), comp.InstalledFile().Name)
		env := []string{"TOOLUP_SYSROOT=" + p.ChannelDir(version)}
		if err := e.Builder.Run(bin, comp.Initialization, env); err != nil {
			logger.Warn().Err(err).Str("component", comp.Name).Msg("initialization failed")
			warnings = append(warnings, fmt.Sprintf("initialization of %q failed, it may misbehave until re-run: %v", comp.Name, err))
			continue
		}
		comp.Initialized = true
	}
	return warnings
}
