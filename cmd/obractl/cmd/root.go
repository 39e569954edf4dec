// Package cmd contains the CLI commands for obractl.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obra-coop/obranet/internal/storage"
)

var dbPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "obractl",
	Short: "obranet admin tool",
	Long: `obractl manages an obranet installation directly through its database
file. It is intended for system administrators: bootstrapping users,
resetting passwords and inspecting projects without going through the API.

Examples:
  # List all users
  obractl user list

  # Create an admin user
  obractl user create --name "Site Admin" --email admin@example.com --role admin

  # Reset a password
  obractl user passwd --email admin@example.com`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/obranet.db", "database file path")
}

// openDatabase opens and migrates the database at the given path.
func openDatabase(path string) (storage.Storage, error) {
	store := storage.NewSQLiteStorage(path)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}
