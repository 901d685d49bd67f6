package command

import (
	"context"
	"errors"
	"fmt"

	"yamdb/database"
	"yamdb/internal/apperr"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	adminEmail     string
	adminUsername  string
	adminPassword  string
	adminFirstName string
	adminLastName  string
)

var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create an active administrator account",
	Example: `  yamdbctl createadmin --email root@example.com --username root --password 's3cret'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		users, closeDB, err := openUserService(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		fields := service.UserFields{}
		if adminFirstName != "" {
			fields.FirstName = &adminFirstName
		}
		if adminLastName != "" {
			fields.LastName = &adminLastName
		}

		user, err := users.CreateAdmin(ctx, adminEmail, adminUsername, adminPassword, fields)
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
				for field, msg := range appErr.Fields {
					color.Red("  %s: %s", field, msg)
				}
				return fmt.Errorf("admin account was not created")
			}
			return err
		}

		color.Green("✓ Admin created")
		fmt.Printf("Username: %s\n", user.DisplayName())
		fmt.Printf("Email:    %s\n", user.Email)
		return nil
	},
}

// openUserService connects to the database and builds a UserService that
// sends no confirmation mail.
func openUserService(ctx context.Context) (service.UserService, func() error, error) {
	db, sqlDB, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	users := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewReviewRepository(db),
		repository.NewTitleRepository(db),
		repository.NewTxManager(db),
		nil,
		logger,
	)
	return users, sqlDB.Close, nil
}

func init() {
	flags := createAdminCmd.Flags()
	flags.StringVar(&adminEmail, "email", "", "admin email (required)")
	flags.StringVar(&adminUsername, "username", "", "admin username (required)")
	flags.StringVar(&adminPassword, "password", "", "admin password (required)")
	flags.StringVar(&adminFirstName, "first-name", "", "first name")
	flags.StringVar(&adminLastName, "last-name", "", "last name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createAdminCmd)
}
