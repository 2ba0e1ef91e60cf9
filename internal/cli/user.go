package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/collegepedia/collegepedia/internal/api/validation"
	"github.com/collegepedia/collegepedia/internal/auth"
)

var (
	userEmail    string
	userPassword string
	userFullName string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account",
	Long: `Create an account with the default role. The stored role is reconciled
the first time the account signs in, so an account whose ID or display name is
on the admin allow-list becomes admin then.

Examples:
  collegectl create-user --email admin@example.com --password s3cret! --full-name "Nivethitha"`,
	Args: cobra.NoArgs,
	RunE: runCreateUser,
}

func init() {
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "account email (required)")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "account password (required)")
	createUserCmd.Flags().StringVar(&userFullName, "full-name", "", "display name (required)")
	rootCmd.AddCommand(createUserCmd)
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	// Operators may claim reserved display names, so none are passed here.
	if fieldErrors := validation.ValidateSignUpRequest(validation.SignUpRequest{
		Email:    userEmail,
		Password: userPassword,
		FullName: userFullName,
	}); len(fieldErrors) > 0 {
		return fieldErrorsToError(fieldErrors)
	}

	db, s, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(userPassword), s.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	u := &auth.User{
		Email:        strings.TrimSpace(userEmail),
		PasswordHash: string(hash),
		Metadata: auth.Metadata{
			auth.MetaFullName: strings.TrimSpace(userFullName),
			auth.MetaRole:     auth.RoleUser,
		},
	}
	if err := auth.NewRepository(db.Pool()).Create(cmd.Context(), u); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.ID, u.Email)
	return nil
}

func fieldErrorsToError(fieldErrors []validation.FieldError) error {
	errs := make([]error, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		errs = append(errs, fmt.Errorf("%s: %s", fe.Field, fe.Message))
	}
	return errors.Join(errs...)
}
