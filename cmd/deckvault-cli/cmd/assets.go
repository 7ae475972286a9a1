package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deckvault/internal/application/commands"
)

var assetOutput string

var readCmd = &cobra.Command{
	Use:   "read <project> <kind> <key>",
	Short: "Read an asset, local tier first",
	Long: `Read an asset from the project's store. The local tier is consulted
first; on a local miss the remote tier is fetched and the local copy
repopulated. Bytes go to stdout unless --output names a file.

Examples:
  deckvault-cli read talks resources diagram.png --output diagram.png
  deckvault-cli read talks attachments appendix.pdf`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewReadAssetCommand(GetDeps(), args[0], args[1], args[2]).Execute(context.Background())
		if err != nil {
			return err
		}
		if assetOutput != "" {
			return os.WriteFile(assetOutput, result.Data, 0o644)
		}
		_, err = os.Stdout.Write(result.Data)
		return err
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <project> <kind> <key> <file>",
	Short: "Store an asset in both tiers",
	Long: `Store the contents of a file under the given kind and key. The local
tier is written first; the remote tier is attempted when sync is
enabled and a failure there degrades to a warning, never an error.

Examples:
  deckvault-cli write talks resources diagram.png ./diagram.png`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[3])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[3], err)
		}
		result, err := commands.NewWriteAssetCommand(GetDeps(), args[0], args[1], args[2], data).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		if result.Result.Warning != "" {
			fmt.Printf("  warning: %s\n", result.Result.Warning)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <project> <kind> <key>",
	Short: "Delete an unreferenced asset from both tiers",
	Long: `Delete an asset from both store tiers. The delete is refused while
any page still references the asset. Deleting a key that is absent
from a tier is not an error.

Examples:
  deckvault-cli delete talks resources old-diagram.png`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewDeleteAssetCommand(GetDeps(), args[0], args[1], args[2]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		if result.Result.Warning != "" {
			fmt.Printf("  warning: %s\n", result.Result.Warning)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <project> <kind>",
	Short: "List stored assets of a kind",
	Long: `List asset keys of the given kind across both tiers, with the tier
each key was found in.

Examples:
  deckvault-cli list talks resources`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewListAssetsCommand(GetDeps(), args[0], args[1]).Execute(context.Background())
		if err != nil {
			return err
		}
		for _, k := range result.Listing.Keys {
			tiers := ""
			if result.Listing.Local[k] {
				tiers = "local"
			}
			if result.Listing.Remote[k] {
				if tiers != "" {
					tiers += ","
				}
				tiers += "remote"
			}
			fmt.Printf("%s (%s)\n", k, tiers)
		}
		if result.Listing.Warning != "" {
			fmt.Printf("warning: %s\n", result.Listing.Warning)
		}
		return nil
	},
}

func init() {
	readCmd.Flags().StringVarP(&assetOutput, "output", "o", "", "write asset bytes to a file instead of stdout")
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
}
