// Package paths provides centralized path handling for toolup.
// All locations inside the toolup home directory are defined here so the
// on-disk layout stays consistent across the codebase.
package paths

import (
	"path/filepath"
)

// Directory and file names inside the toolup home.
// IMPORTANT: These constants define toolup's on-disk state layout and are
// NOT user-configurable. The lifecycle state machine depends on them.
const (
	// BinDirName holds the toolup wrapper binaries
	BinDirName = "bin"

	// ToolchainsDirName holds one sysroot directory per installed channel
	ToolchainsDirName = "toolchains"

	// StablePointerName is the symlink to the latest stable sysroot
	StablePointerName = "stable"

	// DefaultPointerName is the symlink holding the system default toolchain
	DefaultPointerName = "default"

	// OptPointerName is the symlink to the active channel's opt directory
	OptPointerName = "opt"

	// LocalManifestName is the on-disk record of installed channels
	LocalManifestName = "manifest.json"

	// InstallScriptName is the generated install script inside a sysroot
	InstallScriptName = "install.sh"

	// SnapshotName records the channel exactly as it was installed
	SnapshotName = ".installed_channel.json"

	// ProgressName is the in-progress install log, one component per line
	ProgressName = ".installation-in-progress"

	// CompleteName marks a fully installed sysroot
	CompleteName = "installation-successful"

	// ProjectFileName declares a project-local toolchain selection
	ProjectFileName = "toolup-toolchain.toml"
)

// Sysroot subdirectories created for every channel
var SysrootDirs = []string{"opt", "lib", "bin", "var"}

// Paths resolves locations inside a toolup home directory
type Paths struct {
	home string
}

// New creates a Paths rooted at the given toolup home
func New(home string) Paths {
	return Paths{home: home}
}

// Home returns the toolup home directory
func (p Paths) Home() string {
	return p.home
}

// BinDir returns the directory for toolup's own binaries
func (p Paths) BinDir() string {
	return filepath.Join(p.home, BinDirName)
}

// ToolchainsDir returns the parent directory of all sysroots
func (p Paths) ToolchainsDir() string {
	return filepath.Join(p.home, ToolchainsDirName)
}

// ChannelDir returns the sysroot for a channel version
func (p Paths) ChannelDir(version string) string {
	return filepath.Join(p.ToolchainsDir(), version)
}

// ChannelBinDir returns the executable directory inside a sysroot
func (p Paths) ChannelBinDir(version string) string {
	return filepath.Join(p.ChannelDir(version), "bin")
}

// ChannelLibDir returns the library directory inside a sysroot
func (p Paths) ChannelLibDir(version string) string {
	return filepath.Join(p.ChannelDir(version), "lib")
}

// ChannelOptDir returns the opt directory inside a sysroot
func (p Paths) ChannelOptDir(version string) string {
	return filepath.Join(p.ChannelDir(version), "opt")
}

// ChannelVarDir returns the var directory inside a sysroot
func (p Paths) ChannelVarDir(version string) string {
	return filepath.Join(p.ChannelDir(version), "var")
}

// InstallScript returns the generated install script path for a channel
func (p Paths) InstallScript(version string) string {
	return filepath.Join(p.ChannelDir(version), InstallScriptName)
}

// Snapshot returns the installed-channel snapshot path for a channel
func (p Paths) Snapshot(version string) string {
	return filepath.Join(p.ChannelDir(version), SnapshotName)
}

// ProgressFile returns the in-progress install log path for a channel
func (p Paths) ProgressFile(version string) string {
	return filepath.Join(p.ChannelDir(version), ProgressName)
}

// CompleteMarker returns the completion marker path for a channel
func (p Paths) CompleteMarker(version string) string {
	return filepath.Join(p.ChannelDir(version), CompleteName)
}

// StablePointer returns the stable symlink path
func (p Paths) StablePointer() string {
	return filepath.Join(p.ToolchainsDir(), StablePointerName)
}

// DefaultPointer returns the default-toolchain symlink path
func (p Paths) DefaultPointer() string {
	return filepath.Join(p.ToolchainsDir(), DefaultPointerName)
}

// OptPointer returns the active-channel opt symlink path
func (p Paths) OptPointer() string {
	return filepath.Join(p.home, OptPointerName)
}

// LocalManifest returns the local manifest path
func (p Paths) LocalManifest() string {
	return filepath.Join(p.home, LocalManifestName)
}
