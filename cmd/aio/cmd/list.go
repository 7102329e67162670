package cmd

import (
	"github.com/spf13/cobra"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list [status]",
	Short: "List tasks",
	Long: `List tasks. The default view shows inbox, next, waiting, and
scheduled tasks; pass a status to see one bucket.

Examples:
  aio list
  aio list waiting
  aio list --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{}
		if len(args) == 1 {
			params["status"] = args[0]
		}
		if listAll {
			params["include_completed"] = true
		}

		var result taskListView
		if err := call("list_tasks", params, &result); err != nil {
			return err
		}
		printTasks(result.Tasks)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include completed tasks")
	rootCmd.AddCommand(listCmd)
}
