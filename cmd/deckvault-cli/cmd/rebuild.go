package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deckvault/internal/application/commands"
	"deckvault/internal/domain"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild-index <project>",
	Short: "Rebuild a project's reference index",
	Long: `Derive the asset reference index from current project content and
print it. Rebuilding never mutates anything; pair it with reconcile to
apply deletions.

Examples:
  deckvault-cli rebuild-index talks`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewRebuildIndexCommand(GetDeps(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		for _, kind := range domain.Kinds {
			for _, key := range result.Index.Keys(kind) {
				refs := result.Index.Refs(kind, key)
				fmt.Printf("  %s/%s: %d reference(s)\n", kind, key, len(refs))
			}
		}
		for _, d := range result.Index.Dangling {
			fmt.Printf("  dangling: %q on page %s (%s)\n", d.Target, d.PageID, d.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}
