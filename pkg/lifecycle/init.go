package lifecycle

import (
	"github.com/arthur-debert/toolup/pkg/manifest"
)

// Init bootstraps a fresh toolup home and installs the stable channel
// unless one is already present. It is the first command a new user
// runs.
func (e *Env) Init() ([]string, error) {
	if err := e.EnsureHome(); err != nil {
		return nil, err
	}

	var warnings []string
	if _, err := e.FS.Readlink(e.Paths().StablePointer()); err != nil {
		installWarnings, err := e.Install(manifest.UserChannel{Kind: manifest.UserStable}, nil)
		warnings = append(warnings, installWarnings...)
		if err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}
