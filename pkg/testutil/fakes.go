package testutil

import (
	"fmt"
	"time"
)

// FakeBuilder records builder calls and lets tests script their
// outcomes.
type FakeBuilder struct {
	Installs   []string
	Uninstalls []string
	Runs       []string

	InstallErr   error
	UninstallErr error
	RunErr       error

	// OnInstall, when set, simulates the install script's side
	// effects on the test filesystem.
	OnInstall func(sysroot, scriptPath string) error
}

func (b *FakeBuilder) Install(sysroot, scriptPath string) error {
	b.Installs = append(b.Installs, sysroot)
	if b.InstallErr != nil {
		return b.InstallErr
	}
	if b.OnInstall != nil {
		return b.OnInstall(sysroot, scriptPath)
	}
	return nil
}

func (b *FakeBuilder) UninstallExecutable(name, root string) error {
	b.Uninstalls = append(b.Uninstalls, name)
	return b.UninstallErr
}

func (b *FakeBuilder) Run(bin string, args []string, env []string) error {
	b.Runs = append(b.Runs, fmt.Sprintf("%s %v", bin, args))
	return b.RunErr
}

// FakeProbe serves canned change-detection answers.
type FakeProbe struct {
	// Revisions maps "repositoryURL branch" to a commit hash.
	Revisions map[string]string

	// Mtimes maps local paths to their newest modification time.
	Mtimes map[string]time.Time
}

func (p *FakeProbe) LatestRevision(repositoryURL, branch string) (string, error) {
	if hash, ok := p.Revisions[repositoryURL+" "+branch]; ok {
		return hash, nil
	}
	return "", fmt.Errorf("no revision recorded for %s %s", repositoryURL, branch)
}

func (p *FakeProbe) LatestModification(path string) (time.Time, error) {
	if mtime, ok := p.Mtimes[path]; ok {
		return mtime, nil
	}
	return time.Time{}, fmt.Errorf("no mtime recorded for %s", path)
}
