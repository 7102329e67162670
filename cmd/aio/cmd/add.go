package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	addDue     string
	addProject string
	addStatus  string
	addTags    []string
)

var addCmd = &cobra.Command{
	Use:   "add <title>...",
	Short: "Add a task to the inbox",
	Long: `Add a task. New tasks land in the inbox unless --status says otherwise.

Examples:
  aio add Review the quarterly report --due tomorrow
  aio add Ping legal about the NDA --due +3d --project Compliance`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{"title": strings.Join(args, " ")}
		if addDue != "" {
			params["due"] = addDue
		}
		if addProject != "" {
			params["project"] = addProject
		}
		if addStatus != "" {
			params["status"] = addStatus
		}
		if len(addTags) > 0 {
			params["tags"] = addTags
		}

		var result taskResultView
		if err := call("add_task", params, &result); err != nil {
			return err
		}
		fmt.Printf("Added %s: %s\n", result.Task.ID, result.Task.Title)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "due date (YYYY-MM-DD, today, tomorrow, +Nd)")
	addCmd.Flags().StringVarP(&addProject, "project", "p", "", "project name or wikilink")
	addCmd.Flags().StringVarP(&addStatus, "status", "s", "", "initial status (default inbox)")
	addCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "tags (repeatable)")
	rootCmd.AddCommand(addCmd)
}
