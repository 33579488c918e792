// Package revert implements "undo revert <path|all>": restore one tracked
// file, or every tracked file, to its pre-run snapshot.
package revert

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/servusdei2018/undo/cmd"
	"github.com/servusdei2018/undo/internal/config"
	"github.com/servusdei2018/undo/internal/store"
)

var commandDefinition = &cobra.Command{
	Use:   "revert <path|all>",
	Short: "Restore a tracked file (or every tracked file) to its snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		s, err := store.Open(config.CacheDir(), config.DatabaseFile)
		if err != nil {
			return err
		}
		defer s.Close()

		if args[0] == "all" {
			return revertAll(s)
		}

		abs, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving %s: %w", args[0], err)
		}
		// The tracer keys snapshots by NFC-normalized path (pathresolve.Join);
		// a path typed here must be normalized the same way, or an NFD-typed
		// argument won't match an NFC-stored key.
		abs = norm.NFC.String(abs)
		if err := s.Restore(abs); err != nil {
			return err
		}
		fmt.Println(abs)
		return nil
	},
}

// revertAll restores every tracked path, continuing past a per-path
// failure rather than aborting — per the design notes, one bad restore
// shouldn't strand the rest of a batch revert. Failures are joined into a
// single error so the command's exit code still reflects them.
func revertAll(s *store.Store) error {
	paths, err := s.List()
	if err != nil {
		return err
	}

	var errs []error
	for _, p := range paths {
		if err := s.Restore(p); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Println(p)
	}
	return errors.Join(errs...)
}

func init() {
	cmd.Root.AddCommand(commandDefinition)
}
