// Package cmd wires the undo command-line surface together: a cobra Root
// command plus one subcommand package per operation, matching the split the
// teacher's own cmd package uses (a package-level Root, one subdirectory per
// subcommand, each registering itself with Root from an init function).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/servusdei2018/undo/internal/config"
	"github.com/servusdei2018/undo/internal/logging"
)

var verbose bool
var quiet bool

// Root is the top-level undo command. Subcommand packages register
// themselves onto it from their own init functions, the way the teacher's
// cmd/version and cmd/touch packages register onto cmd.Root.
var Root = &cobra.Command{
	Use:   "undo",
	Short: "Trace a program and let its filesystem changes be undone",
	Long: `undo runs a program under ptrace, snapshots the prior state of every
file it is about to create, modify, or delete, and lets those changes be
listed and reverted afterwards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		logging.SetVerbose(verbose)
		logging.SetQuiet(quiet)
		if CacheDirFlagChanged() {
			logging.Debugf("cmd: using --cache-dir override %s", config.CacheDirOverride)
		}
		if err := config.EnsureCacheDir(); err != nil {
			return fmt.Errorf("preparing cache directory: %w", err)
		}
		return nil
	},
}

// flags is typed as *pflag.FlagSet, not left as the cobra.Command method
// result, so the Lookup below has something concrete to call into —
// mirroring the teacher's own direct use of the pflag API for flag
// definitions that plain cobra tags can't express.
var flags *pflag.FlagSet

func init() {
	flags = Root.PersistentFlags()
	flags.StringVar(&config.CacheDirOverride, "cache-dir", "",
		"directory holding the snapshot database (default ~/.cache/undo)")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	flags.BoolVarP(&quiet, "quiet", "q", false,
		"suppress all output except errors")
}

// CacheDirFlagChanged reports whether --cache-dir was explicitly passed on
// the command line, as opposed to falling back to its default resolution —
// used by Root's PersistentPreRunE to log which cache directory is in use
// only when it isn't the obvious one.
func CacheDirFlagChanged() bool {
	f := flags.Lookup("cache-dir")
	return f != nil && f.Changed
}

// Execute runs the Root command, printing any returned error to stderr and
// translating it into a process exit code. It is the only entry point
// main.go calls.
func Execute() {
	if err := Root.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
