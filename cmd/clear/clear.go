// Package clear implements "undo clear": empty the snapshot store.
package clear

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/servusdei2018/undo/cmd"
	"github.com/servusdei2018/undo/internal/config"
	"github.com/servusdei2018/undo/internal/store"
)

var commandDefinition = &cobra.Command{
	Use:   "clear",
	Short: "Empty the snapshot store without touching any files on disk",
	Args:  cobra.NoArgs,
	RunE: func(command *cobra.Command, args []string) error {
		s, err := store.Open(config.CacheDir(), config.DatabaseFile)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Clear(); err != nil {
			return err
		}
		fmt.Println("store cleared")
		return nil
	},
}

func init() {
	cmd.Root.AddCommand(commandDefinition)
}
