package builder

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/paths"
)

// installScriptTemplate is the shape of the generated install script.
// The script is resumable: each component guards on the file it
// installs, appends its name to the progress log when done, and the
// log is renamed to the completion marker only after the last one.
const installScriptTemplate = `#!/bin/sh
set -eu

SYSROOT="${TOOLUP_SYSROOT}"
PROGRESS="${SYSROOT}/{{.ProgressName}}"
: > "${PROGRESS}"

{{range .Components}}# component: {{.Name}}
if [ ! -e "${SYSROOT}/{{.Guard}}" ]; then
{{- range .Commands}}
    {{.}}
{{- end}}
fi
echo "{{.Name}}" >> "${PROGRESS}"

{{end}}mv "${PROGRESS}" "${SYSROOT}/{{.CompleteName}}"
`

type scriptComponent struct {
	Name     string
	Guard    string
	Commands []string
}

type scriptData struct {
	ProgressName string
	CompleteName string
	Components   []scriptComponent
}

// GenerateScript renders the install script for a channel.
func GenerateScript(ch *manifest.Channel) (string, error) {
	data := scriptData{
		ProgressName: paths.ProgressName,
		CompleteName: paths.CompleteName,
	}
	for i := range ch.Components {
		sc, err := componentScript(&ch.Components[i])
		if err != nil {
			return "", err
		}
		data.Components = append(data.Components, sc)
	}

	tmpl, err := template.New("install").Parse(installScriptTemplate)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrScriptGenerate, "install script template is broken")
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", errors.Wrap(err, errors.ErrScriptGenerate, "failed to render install script")
	}
	return out.String(), nil
}

func componentScript(comp *manifest.Component) (scriptComponent, error) {
	installed := comp.InstalledFile()
	sc := scriptComponent{Name: comp.Name}

	if installed.Library {
		sc.Guard = "lib/" + installed.Name
		cmd, err := libraryCommand(comp, installed.Name)
		if err != nil {
			return sc, err
		}
		sc.Commands = []string{cmd}
		return sc, nil
	}

	sc.Guard = "bin/" + installed.Name
	sc.Commands = []string{cargoInstallCommand(comp)}
	return sc, nil
}

// libraryCommand copies a prebuilt artifact into the sysroot lib
// directory. file:// artifacts are copied, https:// ones downloaded.
func libraryCommand(comp *manifest.Component, name string) (string, error) {
	uri := comp.ArtifactURI()
	switch {
	case strings.HasPrefix(uri, "file://"):
		return fmt.Sprintf("cp %q \"${SYSROOT}/lib/%s\"", strings.TrimPrefix(uri, "file://"), name), nil
	case strings.HasPrefix(uri, "https://"):
		return fmt.Sprintf("curl -fsSL -o \"${SYSROOT}/lib/%s\" %q", name, uri), nil
	case uri == "":
		return "", errors.Newf(errors.ErrScriptGenerate, "library component %q has no artifact to install from", comp.Name)
	default:
		return "", errors.Newf(errors.ErrScriptGenerate, "library component %q has artifact with unsupported URI %q", comp.Name, uri)
	}
}

// cargoInstallCommand builds the cargo invocation for an executable
// component from its authority.
func cargoInstallCommand(comp *manifest.Component) string {
	args := []string{"cargo"}
	if comp.ToolchainSelector != "" {
		args = append(args, "+"+comp.ToolchainSelector)
	}
	args = append(args, "install")

	switch src := comp.Source.(type) {
	case *manifest.Registry:
		args = append(args, src.Package)
		if src.Version != nil {
			args = append(args, "--version", src.Version.String())
		}
	case *manifest.Git:
		args = append(args, "--git", src.RepositoryURL)
		switch target := src.Target.(type) {
		case *manifest.Branch:
			args = append(args, "--branch", target.Name)
		case *manifest.Revision:
			args = append(args, "--rev", target.Hash)
		case *manifest.TagTarget:
			args = append(args, "--tag", target.Name)
		}
		if src.CrateName != "" {
			args = append(args, src.CrateName)
		}
	case *manifest.LocalPath:
		args = append(args, "--path", src.Path)
		if src.CrateName != "" {
			args = append(args, src.CrateName)
		}
	}

	if len(comp.Features) > 0 {
		args = append(args, "--features", strings.Join(comp.Features, ","))
	}
	args = append(args, "--root", `"${SYSROOT}"`, "--locked")
	return strings.Join(args, " ")
}
