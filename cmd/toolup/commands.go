package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/toolup/pkg/config"
	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/filesystem"
	"github.com/arthur-debert/toolup/pkg/lifecycle"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/toolchain"
	"github.com/arthur-debert/toolup/pkg/ui"
)

var installComponents []string

func newEnv() (*lifecycle.Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return lifecycle.New(cfg, filesystem.NewOS()), nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, ui.Warning(w))
	}
}

// refreshPointers keeps the opt symlink current after a command. Never
// fatal, the next command gets another chance.
func refreshPointers(env *lifecycle.Env) {
	if err := env.RefreshOptPointer(); err != nil {
		log.Warn().Err(err).Msg("could not refresh opt pointer")
	}
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap toolup and install the stable channel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		warnings, err := env.Init()
		printWarnings(warnings)
		if err != nil {
			return err
		}
		refreshPointers(env)

		fmt.Printf("toolup was successfully initialized in:\n%s\n", env.Paths().Home())
		if _, err := exec.LookPath("toolup"); err != nil {
			fmt.Printf("\nTo put installed tools on your PATH, add this to your shell profile:\n\n"+
				"  export PATH=%s:$PATH\n", env.Paths().BinDir())
		}
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install <channel>",
	Short: "Install a channel into its own sysroot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		warnings, err := env.Install(manifest.ParseUserChannel(args[0]), installComponents)
		printWarnings(warnings)
		if err != nil {
			return err
		}
		refreshPointers(env)
		fmt.Printf("channel %s installed\n", ui.Emphasis.Render(args[0]))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [channel]",
	Short: "Update installed channels to match upstream",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		var selection *manifest.UserChannel
		if len(args) == 1 {
			parsed := manifest.ParseUserChannel(args[0])
			selection = &parsed
		}
		warnings, err := env.Update(selection)
		printWarnings(warnings)
		if err != nil {
			return err
		}
		refreshPointers(env)
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <channel>",
	Short: "Remove an installed channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		warnings, err := env.Uninstall(manifest.ParseUserChannel(args[0]))
		printWarnings(warnings)
		if err != nil {
			return err
		}
		refreshPointers(env)
		fmt.Printf("channel %s uninstalled\n", ui.Emphasis.Render(args[0]))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <channel>",
	Short: "Pin this project to an installed channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		path, err := env.Set(manifest.ParseUserChannel(args[0]))
		if err != nil {
			return err
		}
		refreshPointers(env)
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

var defaultCmd = &cobra.Command{
	Use:   "default <channel>",
	Short: "Set the system-wide default toolchain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		selection := manifest.ParseUserChannel(args[0])
		if err := env.SetDefault(selection); err != nil {
			return err
		}
		refreshPointers(env)
		fmt.Printf("set %s as the default toolchain\n", ui.Emphasis.Render(selection.String()))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Inspect the toolup environment",
}

var showActiveCmd = &cobra.Command{
	Use:   "active-toolchain",
	Short: "Show the active toolchain and where it comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		tc, source, err := env.ActiveToolchain()
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", tc.Channel, source)
		return nil
	},
}

var showHomeCmd = &cobra.Command{
	Use:   "home",
	Short: "Display the computed toolup home",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		fmt.Println(env.Paths().Home())
		return nil
	},
}

var showListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed toolchains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		installed, err := env.ListInstalled()
		if err != nil {
			return err
		}
		for _, row := range installed {
			var notes []string
			if row.Alias != "" {
				notes = append(notes, row.Alias)
			}
			if row.Partial {
				notes = append(notes, "partial")
			}
			if !row.Complete {
				notes = append(notes, "incomplete")
			}
			if len(notes) > 0 {
				fmt.Printf("%s (%s)\n", ui.Emphasis.Render(row.Name), strings.Join(notes, ", "))
			} else {
				fmt.Println(ui.Emphasis.Render(row.Name))
			}
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <component-or-alias> [args...]",
	Short: "Run a tool from the active toolchain",
	Long: `Resolves the given name against the active toolchain, falling back
to the installed channel, and executes the matching component
pipeline with the remaining arguments appended.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		env, err := newEnv()
		if err != nil {
			return err
		}
		warnings, err := env.Run(args[0], args[1:])
		printWarnings(warnings)
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				os.Exit(exitErr.ExitCode())
			}
			if errors.IsErrorCode(err, errors.ErrUnknownArgument) {
				if opts, optsErr := env.InvocationOptions(); optsErr == nil {
					printOptions(opts)
				}
			}
			return err
		}
		refreshPointers(env)
		return nil
	},
}

// printOptions shows what the active toolchain makes invocable, one
// section per kind. Empty sections are dropped.
func printOptions(opts toolchain.Options) {
	sections := []struct {
		title string
		items []string
	}{
		{"Available aliases:", opts.Aliases},
		{"Available components:", opts.Executables},
		{"Available libraries:", opts.Libraries},
	}
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		fmt.Fprintln(os.Stderr, ui.Heading.Render(section.title))
		for _, item := range section.items {
			fmt.Fprintf(os.Stderr, "  %s\n", item)
		}
	}
}

func init() {
	installCmd.Flags().StringSliceVarP(&installComponents, "component", "c", nil, "Restrict the install to these components (plus what they require)")
	showCmd.AddCommand(showActiveCmd, showHomeCmd, showListCmd)
}
