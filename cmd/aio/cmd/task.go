package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <id-or-title>...",
	Short: "Complete a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  transition("complete_task", "Completed"),
}

var startCmd = &cobra.Command{
	Use:   "start <id-or-title>...",
	Short: "Move a task to Next",
	Args:  cobra.MinimumNArgs(1),
	RunE:  transition("start_task", "Started"),
}

var deferCmd = &cobra.Command{
	Use:   "defer <id-or-title>...",
	Short: "Defer a task to Someday",
	Args:  cobra.MinimumNArgs(1),
	RunE:  transition("defer_task", "Deferred"),
}

var delegateTo string

var delegateCmd = &cobra.Command{
	Use:   "delegate <id-or-title>...",
	Short: "Move a task to Waiting on someone",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{"query": strings.Join(args, " ")}
		if delegateTo != "" {
			params["to"] = delegateTo
		}
		var result taskResultView
		if err := call("delegate_task", params, &result); err != nil {
			return err
		}
		fmt.Printf("Delegated %s: %s\n", result.Task.ID, result.Task.Title)
		return nil
	},
}

func transition(method, verb string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var result taskResultView
		if err := call(method, map[string]any{"query": strings.Join(args, " ")}, &result); err != nil {
			return err
		}
		fmt.Printf("%s %s: %s\n", verb, result.Task.ID, result.Task.Title)
		return nil
	}
}

func init() {
	delegateCmd.Flags().StringVarP(&delegateTo, "to", "t", "", "person the task now waits on")
	rootCmd.AddCommand(doneCmd, startCmd, deferCmd, delegateCmd)
}
