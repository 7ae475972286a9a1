package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deckvault/internal/adapters/filesystem"
	"deckvault/internal/adapters/oss"
	"deckvault/internal/adapters/sqlite"
	"deckvault/internal/application"
	"deckvault/internal/application/commands"
	"deckvault/internal/config"
	"deckvault/internal/ports"
	"deckvault/internal/store"
)

var (
	rootPath string
	deps     *commands.Deps
)

var rootCmd = &cobra.Command{
	Use:   "deckvault-cli",
	Short: "CLI for managing slide project assets",
	Long: `deckvault-cli manages the resources and attachments of slide
projects: which pages reference which files, a local cache plus an
optional object-storage mirror, and reference-driven cleanup.

Remote sync is configured through DECKVAULT_OSS_* environment
variables (endpoint, bucket, access key, secret key) and applies only
to projects with ossSyncEnabled set in their descriptor.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		repo := filesystem.NewRepository(rootPath)
		ledger, err := sqlite.Open(sqlite.DefaultPath(repo.Root()))
		if err != nil {
			return err
		}

		var remote ports.ObjectStorage
		ossCfg, ossConfigured := config.OSSFromEnv()
		if ossConfigured {
			client, err := oss.New(ossCfg)
			if err != nil {
				return err
			}
			remote = client
		}

		deps = &commands.Deps{
			Repo:      repo,
			Snapshots: repo,
			Stores: &store.Factory{
				Root:   repo.Root(),
				Prefix: ossCfg.Prefix,
				Remote: remote,
				Ledger: ledger,
			},
			Locks: application.NewLocks(),
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", config.Root(), "path to the projects root")
}

// GetDeps returns the initialized command dependencies
func GetDeps() *commands.Deps {
	return deps
}
