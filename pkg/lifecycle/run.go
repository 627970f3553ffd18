package lifecycle

import (
	"os"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/logging"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/toolchain"
)

// Run resolves a token against the active toolchain and executes the
// resulting pipeline, installing the toolchain first if it is missing.
// The returned warnings must be shown to the user before the child
// process output.
func (e *Env) Run(token string, args []string) ([]string, error) {
	logger := logging.GetLogger("run")

	tc, source, err := toolchain.Current(e.Config, e.FS)
	if err != nil {
		return nil, err
	}
	logger.Debug().Stringer("channel", tc.Channel).Stringer("source", source).Msg("active toolchain")

	installed, warnings, err := e.ensureToolchainInstalled(tc)
	if err != nil {
		return warnings, err
	}

	active := installed
	if len(tc.Components) > 0 {
		subset, subsetWarnings := installed.Subset(tc.Components)
		warnings = append(warnings, subsetWarnings...)
		active = subset
	}

	env := &toolchain.Environment{Active: active, Installed: installed}
	res, resolveWarnings, err := env.Resolve(token)
	warnings = append(warnings, resolveWarnings...)
	if err != nil {
		return warnings, err
	}

	p := e.Paths()
	argv, argvWarnings, err := env.Argv(res, p, args)
	warnings = append(warnings, argvWarnings...)
	if err != nil {
		return warnings, err
	}

	version := res.Channel.Name.String()
	childEnv := []string{
		"TOOLUP_HOME=" + p.Home(),
		"TOOLUP_SYSROOT=" + p.ChannelDir(version),
		"PATH=" + p.ChannelOptDir(version) + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
	return warnings, e.Builder.Run(argv[0], argv[1:], childEnv)
}

// InvocationOptions lists everything the active toolchain would let
// the wrapper invoke, for error and help output. Works from the local
// manifest only, nothing gets installed.
func (e *Env) InvocationOptions() (toolchain.Options, error) {
	tc, _, err := toolchain.Current(e.Config, e.FS)
	if err != nil {
		return toolchain.Options{}, err
	}
	local, err := e.LocalManifest()
	if err != nil {
		return toolchain.Options{}, err
	}
	installed := local.Channel(tc.Channel)
	active := installed
	if installed != nil && len(tc.Components) > 0 {
		subset, _ := installed.Subset(tc.Components)
		active = subset
	}
	env := &toolchain.Environment{Active: active, Installed: installed}
	return env.Options(), nil
}

// ensureToolchainInstalled returns the locally installed channel for
// the toolchain's selection, installing it on first use.
func (e *Env) ensureToolchainInstalled(tc *toolchain.Toolchain) (*manifest.Channel, []string, error) {
	local, err := e.LocalManifest()
	if err != nil {
		return nil, nil, err
	}
	if installed := local.Channel(tc.Channel); installed != nil && e.IsChannelComplete(installed.Name.String()) {
		return installed, nil, nil
	}

	warnings, err := e.Install(tc.Channel, tc.Components)
	if err != nil && !errors.IsErrorCode(err, errors.ErrAlreadyInstalled) {
		return nil, warnings, err
	}

	local, err = e.LocalManifest()
	if err != nil {
		return nil, warnings, err
	}
	installed := local.Channel(tc.Channel)
	if installed == nil {
		return nil, warnings, errors.Newf(errors.ErrChannelNotFound, "toolchain channel %s could not be installed", tc.Channel)
	}
	return installed, warnings, nil
}
