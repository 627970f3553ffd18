package lifecycle

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/toolup/pkg/builder"
	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/logging"
	"github.com/arthur-debert/toolup/pkg/manifest"
)

// Update brings installed channels in line with upstream. A nil
// selection updates every installed channel; "stable" rolls forward to
// a newer stable release; an exact version refreshes that channel in
// place. Nightly and tagged selections are not supported yet.
func (e *Env) Update(selection *manifest.UserChannel) ([]string, error) {
	upstream, err := e.UpstreamManifest()
	if err != nil {
		return nil, err
	}
	local, err := e.LocalManifest()
	if err != nil {
		return nil, err
	}

	if selection == nil {
		return e.updateAll(upstream, local)
	}

	switch selection.Kind {
	case manifest.UserStable:
		return e.updateStable(upstream, local)
	case manifest.UserVersion:
		installed := local.ChannelByName(selection.Version)
		if installed == nil {
			return nil, errors.Newf(errors.ErrNotInstalled, "channel %s is not installed", selection.Version)
		}
		current := upstream.ChannelByName(selection.Version)
		if current == nil {
			return nil, errors.Newf(errors.ErrChannelNotFound, "channel %s no longer exists upstream", selection.Version)
		}
		return e.updateChannel(installed, current, local)
	default:
		return nil, errors.Newf(errors.ErrNotImplemented, "updating %s channels is not supported yet", selection)
	}
}

// updateStable moves to a strictly newer stable release by installing
// it alongside the old one.
func (e *Env) updateStable(upstream, local *manifest.Manifest) ([]string, error) {
	installed := local.LatestStable()
	current := upstream.LatestStable()
	if current == nil {
		return nil, errors.New(errors.ErrChannelNotFound, "upstream has no stable channel")
	}
	if installed != nil && !current.Name.GreaterThan(installed.Name) {
		return []string{fmt.Sprintf("stable is already at %s, nothing to update", installed.Name)}, nil
	}
	return e.Install(manifest.UserChannel{Kind: manifest.UserStable}, nil)
}

// updateAll refreshes every installed channel that still exists
// upstream, warning about the ones that do not.
func (e *Env) updateAll(upstream, local *manifest.Manifest) ([]string, error) {
	var warnings []string
	// updateChannel rewrites the local manifest as it goes, so walk a
	// deep copy of the installed list rather than live pointers.
	installedChannels := make([]manifest.Channel, 0, len(local.Channels))
	for i := range local.Channels {
		installedChannels = append(installedChannels, *local.Channels[i].Clone())
	}
	for i := range installedChannels {
		installed := &installedChannels[i]
		current := upstream.ChannelByName(installed.Name)
		if current == nil {
			warnings = append(warnings, fmt.Sprintf("channel %s is not published upstream anymore, skipping it", installed.Name))
			continue
		}
		channelWarnings, err := e.updateChannel(installed, current, local)
		warnings = append(warnings, channelWarnings...)
		if err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// updateChannel refreshes one installed channel in place: changed
// components are removed from the sysroot and the resumable install
// script is re-run, rebuilding exactly what is missing.
func (e *Env) updateChannel(installed, upstream *manifest.Channel, local *manifest.Manifest) ([]string, error) {
	logger := logging.GetLogger("update")
	var warnings []string

	scope := upstream
	if installed.IsPartial() {
		names := make([]string, len(installed.Components))
		for i := range installed.Components {
			names[i] = installed.Components[i].Name
		}
		subset, subsetWarnings := upstream.Subset(names)
		warnings = append(warnings, subsetWarnings...)
		scope = subset
	}

	changed := manifest.ComponentsToUpdate(installed, scope, e.Probes)
	if len(changed) == 0 {
		warnings = append(warnings, fmt.Sprintf("channel %s is already up to date", installed.Name))
		return warnings, nil
	}

	version := installed.Name.String()
	p := e.Paths()
	sysroot := p.ChannelDir(version)

	// Drop the completion marker first so an interrupted update reads
	// as in-progress rather than healthy.
	if err := e.FS.Remove(p.CompleteMarker(version)); err != nil {
		logger.Debug().Err(err).Msg("no completion marker to remove")
	}

	for i := range changed {
		comp := &changed[i]
		existing := installed.Component(comp.Name)
		if existing == nil {
			continue
		}
		installedFile := existing.InstalledFile()
		if installedFile.Library {
			libPath := filepath.Join(p.ChannelLibDir(version), installedFile.Name)
			if err := e.FS.Remove(libPath); err != nil {
				logger.Debug().Err(err).Str("path", libPath).Msg("stale library already gone")
			}
			continue
		}
		// Path-backed components live in the user's workspace; the
		// rebuild overwrites their installed files without an
		// uninstall round-trip.
		if _, local := existing.Source.(*manifest.LocalPath); local {
			continue
		}
		if err := e.Builder.UninstallExecutable(existing.PackageName(), sysroot); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not cleanly remove old %q, rebuilding over it: %v", comp.Name, err))
		}
	}

	target := scope.Clone()
	target.Alias = installed.Alias
	target.Tags = append([]manifest.Tag(nil), installed.Tags...)
	for i := range target.Components {
		comp := &target.Components[i]
		if existing := installed.Component(comp.Name); existing != nil && existing.UpToDate(comp, e.Probes) {
			comp.Initialized = existing.Initialized
		}
	}
	e.refreshAuthorityCaches(target)
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

	warnings = append(warnings, e.initializeComponents(target, version)...)

	local.AddChannel(*target)
	if err := e.SaveLocalManifest(local); err != nil {
		return warnings, err
	}

	logger.Info().Str("channel", version).Int("components", len(changed)).Msg("channel updated")
	return warnings, nil
}
