package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/servusdei2018/undo/internal/config"
)

func TestRootRejectsUnknownCommand(t *testing.T) {
	oldDir := config.CacheDirOverride
	config.CacheDirOverride = t.TempDir()
	defer func() { config.CacheDirOverride = oldDir }()

	// cobra only rejects an unknown subcommand name when Root has
	// subcommands; the real ones register from packages this test binary
	// does not import, so register a stand-in.
	probe := &cobra.Command{
		Use:  "probe",
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error { return nil },
	}
	Root.AddCommand(probe)
	defer Root.RemoveCommand(probe)

	Root.SetArgs([]string{"frobnicate"})
	err := Root.Execute()
	assert.Error(t, err)
}

func TestCacheDirFlagOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	oldDir := config.CacheDirOverride
	defer func() { config.CacheDirOverride = oldDir }()

	probe := &cobra.Command{
		Use:  "probe",
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error { return nil },
	}
	Root.AddCommand(probe)
	defer Root.RemoveCommand(probe)

	Root.SetArgs([]string{"--cache-dir", dir, "probe"})
	assert.NoError(t, Root.Execute())
	assert.Equal(t, dir, config.CacheDirOverride)
}
