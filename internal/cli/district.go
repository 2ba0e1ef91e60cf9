package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/collegepedia/collegepedia/internal/district"
)

var createDistrictCmd = &cobra.Command{
	Use:   "create-district NAME...",
	Short: "Create one or more districts",
	Long: `Create districts by name. Names that already exist are reported and skipped.

Examples:
  collegectl create-district Chennai Coimbatore "The Nilgiris"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			if strings.TrimSpace(name) == "" {
				return errors.New("district name must not be blank")
			}
		}

		db, _, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		repo := district.NewRepository(db.Pool())
		for _, name := range args {
			d := &district.District{Name: strings.TrimSpace(name)}
			err := repo.Create(cmd.Context(), d)
			switch {
			case errors.Is(err, district.ErrDuplicateDistrictName):
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %q: already exists\n", d.Name)
			case err != nil:
				return fmt.Errorf("creating district %q: %w", d.Name, err)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "created district %s (%s)\n", d.ID, d.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createDistrictCmd)
}
