package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"aio/internal/adapters/filesystem"
	"aio/internal/adapters/sqlite"
	"aio/internal/ports"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect and rebuild the ID index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rescan the vault and rebuild the ID index",
	Long: `Rescan every markdown file, archived ones included, and rebuild the
ID index from their frontmatter. Useful after manual edits or after
syncing the vault from another device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := openIndex()
		if err != nil {
			return err
		}
		defer ids.Close()

		if err := ids.Rebuild(); err != nil {
			return err
		}
		counts, err := ids.Counts()
		if err != nil {
			return err
		}
		fmt.Println("Index rebuilt.")
		printIndexCounts(counts)
		return nil
	},
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ID counts and staleness",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := openIndex()
		if err != nil {
			return err
		}
		defer ids.Close()

		counts, err := ids.Counts()
		if err != nil {
			return err
		}
		printIndexCounts(counts)
		if stale, _ := ids.Stale(); stale {
			fmt.Println("Index is stale. Run `aio index rebuild` to update it.")
		}
		return nil
	},
}

func openIndex() (*sqlite.Index, error) {
	vaultPath, err := resolveVault()
	if err != nil {
		return nil, err
	}
	if err := filesystem.NewVault(vaultPath).EnsureInitialized(); err != nil {
		return nil, err
	}
	ids := sqlite.NewIndex(vaultPath)
	if err := ids.Open(); err != nil {
		return nil, err
	}
	return ids, nil
}

func printIndexCounts(counts map[ports.EntityKind]int) {
	fmt.Printf("  Tasks: %d\n", counts[ports.KindTask])
	fmt.Printf("  Projects: %d\n", counts[ports.KindProject])
	fmt.Printf("  People: %d\n", counts[ports.KindPerson])
}

func init() {
	indexCmd.AddCommand(indexRebuildCmd, indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}
