package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List and create projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listProjects("")
	},
}

var projectsListStatus string

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listProjects(projectsListStatus)
	},
}

var (
	projectStatus string
	projectTeam   string
)

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>...",
	Short: "Create a project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{"name": strings.Join(args, " ")}
		if projectStatus != "" {
			params["status"] = projectStatus
		}
		if projectTeam != "" {
			params["team"] = projectTeam
		}

		var result struct {
			Project projectView `json:"project"`
		}
		if err := call("create_project", params, &result); err != nil {
			return err
		}
		fmt.Printf("Created project %s: %s\n", result.Project.ID, result.Project.Name)
		return nil
	},
}

func listProjects(status string) error {
	params := map[string]any{}
	if status != "" {
		params["status"] = status
	}

	var result struct {
		Projects []projectView `json:"projects"`
		Count    int           `json:"count"`
	}
	if err := call("list_projects", params, &result); err != nil {
		return err
	}
	if result.Count == 0 {
		fmt.Println("No projects.")
		return nil
	}
	for _, p := range result.Projects {
		line := fmt.Sprintf("%s  %-9s  %s", p.ID, p.Status, p.Name)
		if p.Team != "" {
			line += "  (" + p.Team + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	projectsListCmd.Flags().StringVarP(&projectsListStatus, "status", "s", "", "filter by status")
	projectsCreateCmd.Flags().StringVarP(&projectStatus, "status", "s", "", "project status (default active)")
	projectsCreateCmd.Flags().StringVarP(&projectTeam, "team", "t", "", "owning team")
	projectsCmd.AddCommand(projectsListCmd, projectsCreateCmd)
	rootCmd.AddCommand(projectsCmd)
}
