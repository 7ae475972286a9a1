package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deckvault/internal/application/commands"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans <project>",
	Short: "List stored assets no page references",
	Long: `Scan both store tiers for assets that exist but are not referenced
by any page. Orphans are only reported; nothing is deleted.

Examples:
  deckvault-cli orphans talks`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewScanOrphansCommand(GetDeps(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		for _, o := range result.Orphans {
			tiers := ""
			if o.Local {
				tiers += "local"
			}
			if o.Remote {
				if tiers != "" {
					tiers += ","
				}
				tiers += "remote"
			}
			fmt.Printf("  %s/%s (%s)\n", o.Kind, o.Key, tiers)
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orphansCmd)
}
