package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deckvault/internal/application/commands"
)

var pendingCmd = &cobra.Command{
	Use:   "pending <project>",
	Short: "List assets out of sync with the remote tier",
	Long: `List assets out of sync according to the sync ledger: a write or
delete whose remote leg never confirmed, or, on a sync-enabled
project, local and remote tiers disagreeing on presence. A clean
report means local and remote agreed at the last operation on every
asset.

Examples:
  deckvault-cli pending talks`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewPendingSyncCommand(GetDeps(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		for _, rec := range result.Records {
			switch {
			case rec.Pending && rec.LocalPresent:
				fmt.Printf("  %s/%s: write unconfirmed\n", rec.Kind, rec.Key)
			case rec.Pending:
				fmt.Printf("  %s/%s: delete unconfirmed\n", rec.Kind, rec.Key)
			default:
				fmt.Printf("  %s/%s: local and remote tiers disagree\n", rec.Kind, rec.Key)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}
