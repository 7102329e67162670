package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"aio/internal/adapters/filesystem"
	"aio/internal/adapters/sqlite"
	"aio/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [vault-path]",
	Short: "Create the folder skeleton in a vault",
	Long: `Create the AIO folder skeleton inside a vault and remember the
vault path in ~/.aio/config.yaml. With no argument the current
directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := vaultFlag
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			path = cwd
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		vault := filesystem.NewVault(abs)
		if err := vault.Init(); err != nil {
			return err
		}

		ids := sqlite.NewIndex(abs)
		if err := ids.Open(); err != nil {
			return err
		}
		defer ids.Close()
		if err := ids.Rebuild(); err != nil {
			return err
		}

		if err := config.SaveGlobalConfig(abs); err != nil {
			return err
		}
		fmt.Printf("Initialized vault at %s\n", abs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
