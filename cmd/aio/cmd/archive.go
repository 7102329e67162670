package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive tasks, projects, or people",
}

var archiveTaskCmd = &cobra.Command{
	Use:   "task <id-or-title>...",
	Short: "Move a task into the Archive tree",
	Args:  cobra.MinimumNArgs(1),
	RunE:  transition("archive_task", "Archived"),
}

var archiveProjectCmd = &cobra.Command{
	Use:   "project <id-or-name>...",
	Short: "Mark a project archived and move its note into the Archive tree",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Project projectView `json:"project"`
		}
		params := map[string]any{"query": strings.Join(args, " ")}
		if err := call("archive_project", params, &result); err != nil {
			return err
		}
		fmt.Printf("Archived project %s: %s\n", result.Project.ID, result.Project.Name)
		return nil
	},
}

var archivePersonCmd = &cobra.Command{
	Use:   "person <id-or-name>...",
	Short: "Move a person note into the Archive tree",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Person personView `json:"person"`
		}
		params := map[string]any{"query": strings.Join(args, " ")}
		if err := call("archive_person", params, &result); err != nil {
			return err
		}
		fmt.Printf("Archived person %s: %s\n", result.Person.ID, result.Person.Name)
		return nil
	},
}

func init() {
	archiveCmd.AddCommand(archiveTaskCmd, archiveProjectCmd, archivePersonCmd)
	rootCmd.AddCommand(archiveCmd)
}
