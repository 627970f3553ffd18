package lifecycle

import (
	"github.com/arthur-debert/toolup/pkg/toolchain"
)

// InstalledToolchain is one row of the installed-channel listing.
type InstalledToolchain struct {
	Name     string
	Alias    string
	Complete bool
	Partial  bool
}

// ActiveToolchain reports the selection in effect and where it came
// from.
func (e *Env) ActiveToolchain() (*toolchain.Toolchain, toolchain.Source, error) {
	return toolchain.Current(e.Config, e.FS)
}

// ListInstalled enumerates the channels recorded in the local
// manifest, annotated with their on-disk health.
func (e *Env) ListInstalled() ([]InstalledToolchain, error) {
	local, err := e.LocalManifest()
	if err != nil {
		return nil, err
	}
	out := make([]InstalledToolchain, 0, len(local.Channels))
	for i := range local.Channels {
		ch := &local.Channels[i]
		row := InstalledToolchain{
			Name:     ch.Name.String(),
			Complete: e.IsChannelComplete(ch.Name.String()),
			Partial:  ch.IsPartial(),
		}
		if ch.Alias != nil {
			row.Alias = ch.Alias.String()
		}
		out = append(out, row)
	}
	return out, nil
}
