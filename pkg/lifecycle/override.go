package lifecycle

import (
	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/manifest"
)

// SetDefault points the default symlink at a channel, making it the
// system-wide toolchain outside any project. Selecting stable links to
// the stable pointer itself rather than its current target, so the
// default keeps tracking stable across updates.
func (e *Env) SetDefault(selection manifest.UserChannel) error {
	if err := e.EnsureHome(); err != nil {
		return err
	}
	p := e.Paths()

	var target string
	if selection.Kind == manifest.UserStable {
		target = p.StablePointer()
	} else {
		local, err := e.LocalManifest()
		if err != nil {
			return err
		}
		installed := local.Channel(selection)
		if installed == nil {
			return errors.Newf(errors.ErrNotInstalled, "channel %s is not installed, try: toolup install %s", selection, selection)
		}
		target = p.ChannelDir(installed.Name.String())
	}

	return e.replaceSymlink(p.DefaultPointer(), target)
}
