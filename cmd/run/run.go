// Package run implements "undo run -- <program> [args...]": trace program
// and snapshot every file it is about to mutate before letting the
// syscall through.
package run

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/servusdei2018/undo/cmd"
	"github.com/servusdei2018/undo/internal/config"
	"github.com/servusdei2018/undo/internal/store"
	"github.com/servusdei2018/undo/internal/tracer"
)

var commandDefinition = &cobra.Command{
	Use:   "run -- <program> [args...]",
	Short: "Run a program under trace, snapshotting files before they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		s, err := store.Open(config.CacheDir(), config.DatabaseFile)
		if err != nil {
			return err
		}
		defer s.Close()

		status, err := tracer.Run(s, args[0], args[1:])
		if err != nil {
			return err
		}
		// Propagate the traced program's own exit status rather than
		// folding it into undo's error reporting: a non-zero exit here
		// is the traced program's business, not a tracing failure.
		if status != 0 {
			os.Exit(status)
		}
		return nil
	},
}

func init() {
	cmd.Root.AddCommand(commandDefinition)
}
