package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deckvault/internal/application/commands"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <project>",
	Short: "Delete assets whose last reference went away",
	Long: `Rebuild the project's reference index, diff it against the index
cached at the last reconcile, and delete assets whose reference set
became empty. Assets that are merely unreferenced-but-present
(orphans) are not touched; use orphans to review them.

Examples:
  deckvault-cli reconcile talks`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewReconcileCommand(GetDeps(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		for _, d := range result.Report.Deleted {
			fmt.Printf("  deleted %s/%s\n", d.Kind, d.Key)
		}
		for _, w := range result.Report.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		for _, d := range result.Report.Dangling {
			fmt.Printf("  dangling: %q on page %s (%s)\n", d.Target, d.PageID, d.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
