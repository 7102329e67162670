package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List and create people",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPeople()
	},
}

var peopleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List people",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPeople()
	},
}

var (
	personTeam  string
	personRole  string
	personEmail string
)

var peopleCreateCmd = &cobra.Command{
	Use:   "create <name>...",
	Short: "Create a person",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{"name": strings.Join(args, " ")}
		if personTeam != "" {
			params["team"] = personTeam
		}
		if personRole != "" {
			params["role"] = personRole
		}
		if personEmail != "" {
			params["email"] = personEmail
		}

		var result struct {
			Person personView `json:"person"`
		}
		if err := call("create_person", params, &result); err != nil {
			return err
		}
		fmt.Printf("Created person %s: %s\n", result.Person.ID, result.Person.Name)
		return nil
	},
}

func listPeople() error {
	var result struct {
		People []personView `json:"people"`
		Count  int          `json:"count"`
	}
	if err := call("list_people", nil, &result); err != nil {
		return err
	}
	if result.Count == 0 {
		fmt.Println("No people.")
		return nil
	}
	for _, p := range result.People {
		line := fmt.Sprintf("%s  %s", p.ID, p.Name)
		if p.Role != "" {
			line += "  (" + p.Role
			if p.Team != "" {
				line += ", " + p.Team
			}
			line += ")"
		} else if p.Team != "" {
			line += "  (" + p.Team + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	peopleCreateCmd.Flags().StringVarP(&personTeam, "team", "t", "", "team")
	peopleCreateCmd.Flags().StringVarP(&personRole, "role", "r", "", "role")
	peopleCreateCmd.Flags().StringVarP(&personEmail, "email", "e", "", "email address")
	peopleCmd.AddCommand(peopleListCmd, peopleCreateCmd)
	rootCmd.AddCommand(peopleCmd)
}
