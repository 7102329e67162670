package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage context packs",
	Long: `Context packs are reusable markdown notes grouped into Domains,
Systems, and Operating folders under AIO/Context-Packs.`,
}

var contextListCategory string

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List context packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{}
		if contextListCategory != "" {
			params["category"] = contextListCategory
		}

		var result struct {
			Packs []packView `json:"packs"`
			Count int        `json:"count"`
		}
		if err := call("list_context_packs", params, &result); err != nil {
			return err
		}
		if result.Count == 0 {
			fmt.Println("No context packs.")
			return nil
		}
		for _, p := range result.Packs {
			line := fmt.Sprintf("%-9s  %s", p.Category, p.ID)
			if p.Description != "" {
				line += "  " + p.Description
			}
			fmt.Println(line)
		}
		return nil
	},
}

var contextGetCmd = &cobra.Command{
	Use:   "get <pack>",
	Short: "Print a context pack's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Content string `json:"content"`
		}
		if err := call("get_context", map[string]any{"pack": args[0]}, &result); err != nil {
			return err
		}
		fmt.Print(result.Content)
		return nil
	},
}

var (
	contextCategory    string
	contextDescription string
)

var contextCreateCmd = &cobra.Command{
	Use:   "create <title>...",
	Short: "Create a context pack",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{
			"title":    strings.Join(args, " "),
			"category": contextCategory,
		}
		if contextDescription != "" {
			params["description"] = contextDescription
		}

		var result struct {
			Pack packView `json:"pack"`
		}
		if err := call("create_context_pack", params, &result); err != nil {
			return err
		}
		fmt.Printf("Created context pack %s\n", result.Pack.ID)
		return nil
	},
}

var contextSection string

var contextAddCmd = &cobra.Command{
	Use:   "add <pack> <content>...",
	Short: "Append content to a context pack",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{
			"pack":    args[0],
			"content": strings.Join(args[1:], " "),
		}
		if contextSection != "" {
			params["section"] = contextSection
		}
		if err := call("add_to_context_pack", params, nil); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	},
}

var contextAddFileCmd = &cobra.Command{
	Use:   "add-file <pack> <file>",
	Short: "Copy a vault file's content into a context pack",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{
			"pack": args[0],
			"file": args[1],
		}
		if contextSection != "" {
			params["section"] = contextSection
		}
		if err := call("add_file_to_context_pack", params, nil); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	},
}

func init() {
	contextListCmd.Flags().StringVarP(&contextListCategory, "category", "c", "", "filter: domain, system, operating")
	contextCreateCmd.Flags().StringVarP(&contextCategory, "category", "c", "domain", "category: domain, system, operating")
	contextCreateCmd.Flags().StringVarP(&contextDescription, "description", "d", "", "one-line description")
	contextAddCmd.Flags().StringVarP(&contextSection, "section", "s", "", "section heading to append under")
	contextAddFileCmd.Flags().StringVarP(&contextSection, "section", "s", "", "section heading to append under")
	contextCmd.AddCommand(contextListCmd, contextGetCmd, contextCreateCmd, contextAddCmd, contextAddFileCmd)
	rootCmd.AddCommand(contextCmd)
}
