package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"deckvault/internal/application/commands"
)

var (
	pageBody   string
	pageScript string
	pageNotes  string
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Manage a project's pages",
}

var pageAddCmd = &cobra.Command{
	Use:   "add <project>",
	Short: "Append a page",
	Long: `Append a page to a project. The page receives a fresh identity that
stays with it for life, through reorders and transfers.

Examples:
  deckvault-cli page add talks --body "# Intro"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewAddPageCommand(GetDeps(), args[0], pageBody, pageScript, pageNotes).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var pageUpdateCmd = &cobra.Command{
	Use:   "update <project> <page-id>",
	Short: "Edit a page's text fields",
	Long: `Replace a page's body, script or notes. Only the flags you pass are
changed. The reference index is reconciled after the edit, so an
asset that loses its last reference here is deleted.

Examples:
  deckvault-cli page update talks 2f1c8a0e-7c1d-4b0a-9f3e-1a2b3c4d5e6f --body "new text"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := commands.NewUpdatePageCommand(GetDeps(), args[0], args[1])
		if cmd.Flags().Changed("body") {
			c.Body = &pageBody
		}
		if cmd.Flags().Changed("script") {
			c.Script = &pageScript
		}
		if cmd.Flags().Changed("notes") {
			c.Notes = &pageNotes
		}
		result, err := c.Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var pageRemoveCmd = &cobra.Command{
	Use:   "remove <project> <page-id>",
	Short: "Remove a page and clean up its assets",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewRemovePageCommand(GetDeps(), args[0], args[1]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		for _, d := range result.Report.Deleted {
			fmt.Printf("  deleted %s/%s\n", d.Kind, d.Key)
		}
		return nil
	},
}

var pageReorderCmd = &cobra.Command{
	Use:   "reorder <project> <page-id>...",
	Short: "Rearrange display order",
	Long: `Rearrange pages into the given order. Every page must appear exactly
once. Reordering never changes which assets are referenced.

Examples:
  deckvault-cli page reorder talks id3 id1 id2`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewReorderPagesCommand(GetDeps(), args[0], args[1:]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var pageListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List pages in display order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps := GetDeps()
		project, err := deps.Repo.Load(args[0])
		if err != nil {
			return err
		}
		for i, p := range project.Pages {
			title := strings.SplitN(strings.TrimSpace(p.Body), "\n", 2)[0]
			if len(title) > 60 {
				title = title[:60]
			}
			fmt.Printf("%3d  %s  %s\n", i+1, p.ID, title)
		}
		return nil
	},
}

func init() {
	pageAddCmd.Flags().StringVar(&pageBody, "body", "", "page body markdown")
	pageAddCmd.Flags().StringVar(&pageScript, "script", "", "speaker script")
	pageAddCmd.Flags().StringVar(&pageNotes, "notes", "", "page notes")
	pageUpdateCmd.Flags().StringVar(&pageBody, "body", "", "page body markdown")
	pageUpdateCmd.Flags().StringVar(&pageScript, "script", "", "speaker script")
	pageUpdateCmd.Flags().StringVar(&pageNotes, "notes", "", "page notes")
	pageCmd.AddCommand(pageAddCmd)
	pageCmd.AddCommand(pageUpdateCmd)
	pageCmd.AddCommand(pageRemoveCmd)
	pageCmd.AddCommand(pageReorderCmd)
	pageCmd.AddCommand(pageListCmd)
	rootCmd.AddCommand(pageCmd)
}
