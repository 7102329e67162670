package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"aio/internal/adapters/filesystem"
)

var dashboardWrite bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the dashboard",
	Long: `Render the dashboard markdown: overdue, due today, due this week,
blocked, and waiting tasks. With --write it is saved to
AIO/Dashboard/Dashboard.md in the vault.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Markdown string `json:"markdown"`
		}
		if err := call("get_dashboard", nil, &result); err != nil {
			return err
		}

		if !dashboardWrite {
			fmt.Print(result.Markdown)
			return nil
		}

		vaultPath, err := resolveVault()
		if err != nil {
			return err
		}
		vault := filesystem.NewVault(vaultPath)
		folder := vault.DashboardFolder()
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return err
		}
		target := filepath.Join(folder, "Dashboard.md")
		if err := os.WriteFile(target, []byte(result.Markdown), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", target)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().BoolVarP(&dashboardWrite, "write", "w", false, "write Dashboard.md into the vault")
	rootCmd.AddCommand(dashboardCmd)
}
