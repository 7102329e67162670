package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Read and write vault files",
}

var fileGetCmd = &cobra.Command{
	Use:   "get <id-title-or-path>",
	Short: "Print a vault file's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Content string `json:"content"`
		}
		if err := call("file_get", map[string]any{"query": args[0]}, &result); err != nil {
			return err
		}
		fmt.Print(result.Content)
		return nil
	},
}

var (
	fileSetContent string
	fileSetFrom    string
)

var fileSetCmd = &cobra.Command{
	Use:   "set <id-title-or-path>",
	Short: "Replace a vault file's contents, backing up the old version",
	Long: `Replace a vault file's contents. Existing files get a timestamped
backup first. The query resolves an entity ID, a title substring, or a
path relative to the vault; new files must be addressed by path.

Content comes from --content, --from, or stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readSetContent()
		if err != nil {
			return err
		}

		var result struct {
			Path   string `json:"path"`
			Backup string `json:"backup"`
		}
		params := map[string]any{"query": args[0], "content": content}
		if err := call("file_set", params, &result); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", result.Path)
		if result.Backup != "" {
			fmt.Printf("Backup at %s\n", result.Backup)
		}
		return nil
	},
}

func readSetContent() (string, error) {
	if fileSetContent != "" {
		return fileSetContent, nil
	}
	if fileSetFrom != "" {
		data, err := os.ReadFile(fileSetFrom)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no content given: use --content, --from, or pipe via stdin")
}

func init() {
	fileSetCmd.Flags().StringVarP(&fileSetContent, "content", "c", "", "content to write")
	fileSetCmd.Flags().StringVarP(&fileSetFrom, "from", "f", "", "read content from a file")
	fileCmd.AddCommand(fileGetCmd, fileSetCmd)
	rootCmd.AddCommand(fileCmd)
}
