package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deckvault/internal/application/commands"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewListProjectsCommand(GetDeps()).Execute(context.Background())
		if err != nil {
			return err
		}
		for _, id := range result.Projects {
			fmt.Println(id)
		}
		return nil
	},
}

var createProjectCmd = &cobra.Command{
	Use:   "create <project>",
	Short: "Create a project",
	Long: `Create a project's directory layout (attachments/, resources/) and
an initial descriptor with one empty page.

Examples:
  deckvault-cli create talks`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewCreateProjectCommand(GetDeps(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(createProjectCmd)
}
