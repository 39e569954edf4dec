package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var projectIncludeArchived bool

// projectCmd represents the project command group
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project inspection commands",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.Projects().List(context.Background(), projectIncludeArchived)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		fmt.Printf("\n%-36s  %-30s  %-10s  %-8s  %s\n",
			"ID", "NAME", "STATUS", "PROGRESS", "CREATED")
		fmt.Println(strings.Repeat("-", 110))
		for _, p := range list {
			name := p.Name
			if p.Archived {
				name += " (archived)"
			}
			fmt.Printf("%-36s  %-30s  %-10s  %7d%%  %s\n",
				p.ID, name, p.Status, p.Progress,
				p.CreatedAt.Format("2006-01-02"))
		}
		fmt.Printf("\nTotal: %d project(s)\n", len(list))
		return nil
	},
}

func init() {
	projectListCmd.Flags().BoolVar(&projectIncludeArchived, "archived", false, "include archived projects")

	projectCmd.AddCommand(projectListCmd)
	rootCmd.AddCommand(projectCmd)
}
