package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deckvault/internal/application/commands"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <src-project> <dst-project> <page-id>",
	Short: "Move a page to another project",
	Long: `Move a page, identity intact, from one project to another. Assets the
page references are copied into the destination store before either
descriptor changes, and assets left unreferenced in the source are
cleaned up afterwards.

Examples:
  deckvault-cli transfer talks archive 2f1c8a0e-7c1d-4b0a-9f3e-1a2b3c4d5e6f`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewTransferPageCommand(GetDeps(), args[0], args[1], args[2]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		for _, m := range result.Moved {
			fmt.Printf("  moved %s\n", m)
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
}
