package command

import (
	"errors"
	"fmt"

	"yamdb/internal/apperr"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	checkUsername string
	checkPassword string
)

var checkAdminCmd = &cobra.Command{
	Use:     "checkadmin",
	Short:   "Verify the password of an administrator account",
	Example: `  yamdbctl checkadmin --username root --password 's3cret'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		users, closeDB, err := openUserService(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		user, err := users.VerifyAdmin(ctx, checkUsername, checkPassword)
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return fmt.Errorf("admin check failed: %s", appErr.Message)
			}
			return err
		}

		color.Green("✓ Credentials valid")
		fmt.Printf("Username: %s\n", user.DisplayName())
		fmt.Printf("Role:     %s\n", user.Role)
		return nil
	},
}

func init() {
	flags := checkAdminCmd.Flags()
	flags.StringVar(&checkUsername, "username", "", "admin username (required)")
	flags.StringVar(&checkPassword, "password", "", "admin password (required)")
	_ = checkAdminCmd.MarkFlagRequired("username")
	_ = checkAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(checkAdminCmd)
}
