package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"aio/internal/adapters/filesystem"
	"aio/internal/adapters/sqlite"
	"aio/internal/adapters/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse tasks interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultPath, err := resolveVault()
		if err != nil {
			return err
		}

		vault := filesystem.NewVault(vaultPath)
		if err := vault.EnsureInitialized(); err != nil {
			return err
		}

		ids := sqlite.NewIndex(vaultPath)
		if err := ids.Open(); err != nil {
			return fmt.Errorf("open ID index: %w", err)
		}
		defer ids.Close()
		if stale, _ := ids.Stale(); stale {
			if err := ids.Rebuild(); err != nil {
				return fmt.Errorf("rebuild ID index: %w", err)
			}
		}

		app := tui.NewApp(filesystem.NewTaskRepo(vault, ids))
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
