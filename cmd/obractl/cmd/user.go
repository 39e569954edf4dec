package cmd

import (
	"context"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/obra-coop/obranet/internal/api/auth"
	"github.com/obra-coop/obranet/internal/models"
)

var (
	userName  string
	userEmail string
	userRoles []string
)

// userCmd represents the user command group
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
	Long: `Commands for managing obranet users.

These commands operate directly on the database file and are intended
for system administrators to manage users outside of the API.`,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		userList, err := store.Users().List(context.Background())
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(userList) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		fmt.Printf("\n%-36s  %-24s  %-30s  %-20s  %s\n",
			"ID", "NAME", "EMAIL", "ROLES", "CREATED")
		fmt.Println(strings.Repeat("-", 130))
		for _, u := range userList {
			roles := make([]string, len(u.Roles))
			for i, r := range u.Roles {
				roles[i] = string(r)
			}
			fmt.Printf("%-36s  %-24s  %-30s  %-20s  %s\n",
				u.ID, u.Name, u.Email,
				strings.Join(roles, ","),
				u.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("\nTotal: %d user(s)\n", len(userList))
		return nil
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long: `Create a new user in the database.

The password is prompted interactively to keep it out of shell history.

Example:
  obractl user create --name "Site Admin" --email admin@example.com --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if userName == "" || userEmail == "" {
			return fmt.Errorf("--name and --email are required")
		}
		roles := make([]models.Role, 0, len(userRoles))
		for _, name := range userRoles {
			role, ok := models.ParseRole(name)
			if !ok {
				return fmt.Errorf("unknown role %q", name)
			}
			roles = append(roles, role)
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		user := models.NewUser(userName, strings.ToLower(userEmail), roles...)
		user.PasswordHash = hash
		if err := store.Users().Create(context.Background(), user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		fmt.Printf("User %s created (%s)\n", user.Email, user.ID)
		return nil
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change a user's password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userEmail == "" {
			return fmt.Errorf("--email is required")
		}

		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		user, err := store.Users().GetByEmail(ctx, strings.ToLower(userEmail))
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}

		password, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		user.UpdatedAt = time.Now()

		if err := store.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		fmt.Printf("Password updated for %s\n", user.Email)
		return nil
	},
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func init() {
	userCreateCmd.Flags().StringVar(&userName, "name", "", "full name")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userCreateCmd.Flags().StringSliceVar(&userRoles, "role", nil, "global role (repeatable)")
	userPasswdCmd.Flags().StringVar(&userEmail, "email", "", "email address")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userPasswdCmd)
	rootCmd.AddCommand(userCmd)
}
