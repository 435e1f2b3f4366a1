package command

import (
	"errors"
	"fmt"

	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/validation"
	"yamdb/internal/middleware/auth"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var (
	superUsername string
	superEmail    string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrator account and print its confirmation code",
	Long: `Create a superuser with the admin role. Accounts have no password: the printed
confirmation code is exchanged for an access token at POST /api/v1/auth/token.

Example:
  manage createsuperuser --username admin --email admin@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.Username(superUsername); err != nil {
			return err
		}
		if err := validator.New().Var(superEmail, "required,email,max=254"); err != nil {
			return fmt.Errorf("invalid email %q", superEmail)
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		code := auth.NewConfirmationCode()
		hash, err := auth.HashCode(code)
		if err != nil {
			return err
		}

		user := &models.User{
			Username:         superUsername,
			Email:            superEmail,
			Role:             models.RoleAdmin,
			IsSuperuser:      true,
			ConfirmationCode: hash,
		}
		if err := repository.NewUserRepository(e.db.Gorm).Create(cmd.Context(), user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("a user with username %q or email %q already exists", superUsername, superEmail)
			}
			return err
		}

		e.logger.Info("Superuser created", "user_id", user.ID, "username", user.Username)
		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created.\nConfirmation code: %s\n", user.Username, code)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superUsername, "username", "", "superuser username (required)")
	createSuperuserCmd.Flags().StringVar(&superEmail, "email", "", "superuser email (required)")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(createSuperuserCmd)
}
