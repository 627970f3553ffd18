package toolchain

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/paths"
)

// Origin says which channel a resolution came from.
type Origin int

const (
	// OriginActive is the channel the current toolchain selects.
	OriginActive Origin = iota

	// OriginInstalled is a channel from the local manifest, used as a
	// fallback when the active channel lacks the requested name.
	OriginInstalled
)

// Environment holds the channels a wrapper invocation can resolve
// against. Either side may be nil.
type Environment struct {
	Active    *manifest.Channel
	Installed *manifest.Channel
}

// Resolution is the outcome of resolving an invocation token.
type Resolution struct {
	Component *manifest.Component
	Channel   *manifest.Channel
	Pipeline  []manifest.CommandStep
	Origin    Origin
}

// Resolve maps a command-line token to a component pipeline. Aliases
// win over component names, and within each kind the active channel
// wins over the installed one. Falling back to the installed channel
// produces a warning.
func (e *Environment) Resolve(token string) (*Resolution, []string, error) {
	if e.Active != nil {
		if res := findAlias(e.Active, token, OriginActive); res != nil {
			return res, nil, nil
		}
	}
	if e.Installed != nil {
		if res := findAlias(e.Installed, token, OriginInstalled); res != nil {
			warning := fmt.Sprintf("alias %q is not part of the active toolchain, using installed channel %s instead", token, e.Installed.Name)
			return res, []string{warning}, nil
		}
	}
	if e.Active != nil {
		if comp := e.Active.Component(token); comp != nil {
			return componentResolution(comp, e.Active, OriginActive), nil, nil
		}
	}
	if e.Installed != nil {
		if comp := e.Installed.Component(token); comp != nil {
			warning := fmt.Sprintf("component %q is not part of the active toolchain, using installed channel %s instead", token, e.Installed.Name)
			return componentResolution(comp, e.Installed, OriginInstalled), []string{warning}, nil
		}
	}
	return nil, nil, errors.Newf(errors.ErrUnknownArgument, "unknown argument %q: it names neither a component nor an alias of the active or installed toolchain", token)
}

// Options is everything an invocation token could name, each list
// sorted. Shown to the user when a token resolves to nothing.
type Options struct {
	Aliases     []string
	Executables []string
	Libraries   []string
}

// Options collects the invocable names across both channels, mirroring
// what Resolve would accept.
func (e *Environment) Options() Options {
	aliases := make(map[string]bool)
	executables := make(map[string]bool)
	libraries := make(map[string]bool)
	for _, ch := range []*manifest.Channel{e.Active, e.Installed} {
		if ch == nil {
			continue
		}
		for name := range ch.Aliases() {
			aliases[name] = true
		}
		for i := range ch.Components {
			installed := ch.Components[i].InstalledFile()
			if installed.Library {
				libraries[installed.Name] = true
				continue
			}
			executables[ch.Components[i].Name] = true
		}
	}
	return Options{
		Aliases:     sortedKeys(aliases),
		Executables: sortedKeys(executables),
		Libraries:   sortedKeys(libraries),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func findAlias(ch *manifest.Channel, token string, origin Origin) *Resolution {
	for i := range ch.Components {
		comp := &ch.Components[i]
		if pipeline, ok := comp.Aliases[token]; ok {
			return &Resolution{Component: comp, Channel: ch, Pipeline: pipeline, Origin: origin}
		}
	}
	return nil
}

func componentResolution(comp *manifest.Component, ch *manifest.Channel, origin Origin) *Resolution {
	pipeline := comp.CallFormat
	if len(pipeline) == 0 {
		pipeline = []manifest.CommandStep{{Kind: manifest.StepExecutable}}
	}
	return &Resolution{Component: comp, Channel: ch, Pipeline: pipeline, Origin: origin}
}

// componentForStep finds a component referenced by a resolve step. The
// channel the pipeline resolved from is preferred; the other channel
// is a warned fallback.
func (e *Environment) componentForStep(name string, preferred Origin) (*manifest.Component, *manifest.Channel, []string, error) {
	first, second := e.Active, e.Installed
	if preferred == OriginInstalled {
		first, second = e.Installed, e.Active
	}
	if first != nil {
		if comp := first.Component(name); comp != nil {
			return comp, first, nil, nil
		}
	}
	if second != nil {
		if comp := second.Component(name); comp != nil {
			warning := fmt.Sprintf("component %q resolved from channel %s rather than the preferred one", name, second.Name)
			return comp, second, []string{warning}, nil
		}
	}
	return nil, nil, nil, errors.Newf(errors.ErrComponentNotFound, "pipeline references component %q, which no channel provides", name)
}

// Argv expands a resolution's pipeline into a concrete argv rooted in
// the sysroots under p, with the user's extra arguments appended.
func (e *Environment) Argv(res *Resolution, p paths.Paths, extra []string) ([]string, []string, error) {
	var argv []string
	var warnings []string

	steps := res.Pipeline
	for i := 0; i < len(steps); i++ {
		step := steps[i]
		switch step.Kind {
		case manifest.StepExecutable:
			path, err := executablePath(res.Component, res.Channel, p)
			if err != nil {
				return nil, warnings, err
			}
			argv = append(argv, path)
		case manifest.StepResolve:
			comp, ch, stepWarnings, err := e.componentForStep(step.Arg, res.Origin)
			warnings = append(warnings, stepWarnings...)
			if err != nil {
				return nil, warnings, err
			}
			path, err := executablePath(comp, ch, p)
			if err != nil {
				return nil, warnings, err
			}
			argv = append(argv, path)
		case manifest.StepLibPath:
			argv = append(argv, p.ChannelLibDir(res.Channel.Name.String()))
		case manifest.StepVarPath:
			if i+1 >= len(steps) || steps[i+1].Kind != manifest.StepVerbatim {
				return nil, warnings, errors.Newf(errors.ErrInvalidInput, "var_path step in pipeline for %q must be followed by a verbatim argument", res.Component.Name)
			}
			i++
			argv = append(argv, filepath.Join(p.ChannelVarDir(res.Channel.Name.String()), steps[i].Arg))
		case manifest.StepVerbatim:
			argv = append(argv, step.Arg)
		}
	}

	argv = append(argv, extra...)
	return argv, warnings, nil
}

func executablePath(comp *manifest.Component, ch *manifest.Channel, p paths.Paths) (string, error) {
	installed := comp.InstalledFile()
	if installed.Library {
		return "", errors.Newf(errors.ErrInvalidInput, "component %q installs a library and cannot be invoked", comp.Name)
	}
	return filepath.Join(p.ChannelBinDir(ch.Name.String()), installed.Name), nil
}
