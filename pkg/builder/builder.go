// Package builder runs the external tools that materialize components
// into a sysroot: the generated install script, cargo for uninstalls
// and the installed executables themselves.
package builder

import (
	"os"
	"os/exec"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/logging"
)

// Builder abstracts process execution so the lifecycle can be tested
// without touching cargo or the network.
type Builder interface {
	// Install runs the generated install script against a sysroot.
	Install(sysroot, scriptPath string) error

	// UninstallExecutable removes a cargo-installed executable from a
	// sysroot.
	UninstallExecutable(name, root string) error

	// Run executes an installed binary with the given argv tail and
	// extra environment entries, wiring the standard streams through.
	Run(bin string, args []string, env []string) error
}

// Exec is the real Builder, shelling out to sh and cargo.
type Exec struct{}

// NewExec returns a Builder backed by real processes.
func NewExec() *Exec {
	return &Exec{}
}

func (e *Exec) Install(sysroot, scriptPath string) error {
	logger := logging.GetLogger("builder")
	logger.Info().Str("sysroot", sysroot).Str("script", scriptPath).Msg("running install script")

	cmd := exec.Command("sh", scriptPath)
	cmd.Env = append(os.Environ(), "TOOLUP_SYSROOT="+sysroot)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "install script %s failed", scriptPath)
	}
	return nil
}

func (e *Exec) UninstallExecutable(name, root string) error {
	logger := logging.GetLogger("builder")
	logger.Info().Str("component", name).Str("root", root).Msg("uninstalling executable")

	cmd := exec.Command("cargo", "uninstall", name, "--root", root)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrUninstallFailed, "cargo uninstall of %q failed", name)
	}
	return nil
}

func (e *Exec) Run(bin string, args []string, env []string) error {
	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
