package lifecycle

import (
	"path/filepath"

	"github.com/arthur-debert/toolup/pkg/toolchain"
)

// RefreshOptPointer keeps the home's opt symlink aimed at the active
// channel's opt directory. Runs after every command: it removes the
// link when the active sysroot is gone and rewrites it when the active
// channel changed.
func (e *Env) RefreshOptPointer() error {
	tc, _, err := toolchain.Current(e.Config, e.FS)
	if err != nil {
		return err
	}
	local, err := e.LocalManifest()
	if err != nil {
		return err
	}

	p := e.Paths()
	active := local.Channel(tc.Channel)
	if active == nil {
		return e.removeSymlink(p.OptPointer())
	}

	version := active.Name.String()
	if _, err := e.FS.Stat(p.ChannelDir(version)); err != nil {
		return e.removeSymlink(p.OptPointer())
	}

	// The link target is <sysroot>/opt, so the channel it belongs to
	// is the target's parent directory.
	if target, err := e.FS.Readlink(p.OptPointer()); err == nil {
		if filepath.Base(filepath.Dir(target)) == version {
			return nil
		}
	}
	return e.replaceSymlink(p.OptPointer(), p.ChannelOptDir(version))
}
