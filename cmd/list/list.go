// Package list implements "undo list": print every path with a pending
// snapshot.
package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/servusdei2018/undo/cmd"
	"github.com/servusdei2018/undo/internal/config"
	"github.com/servusdei2018/undo/internal/store"
)

var commandDefinition = &cobra.Command{
	Use:   "list",
	Short: "List every file with a pending snapshot",
	Args:  cobra.NoArgs,
	RunE: func(command *cobra.Command, args []string) error {
		s, err := store.Open(config.CacheDir(), config.DatabaseFile)
		if err != nil {
			return err
		}
		defer s.Close()

		paths, err := s.List()
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Println("No files are currently tracked for undo.")
			return nil
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	cmd.Root.AddCommand(commandDefinition)
}
