// Package cli implements collegectl, the operator command line.
package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/collegepedia/collegepedia/internal/database"
)

// settings holds what collegectl reads from the environment. Flags win over it.
type settings struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`
}

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "collegectl",
	Short: "Operate a CollegePedia deployment",
	Long: `collegectl applies the database schema and seeds accounts and districts
for a CollegePedia deployment.

DATABASE_URL and BCRYPT_COST are read from the environment or a .env file
in the working directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL (default $DATABASE_URL)")
}

// ExecuteContext runs the root command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadSettings() (settings, error) {
	var s settings
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s, err
	}
	if err := envconfig.Process("", &s); err != nil {
		return s, err
	}
	if databaseURL != "" {
		s.DatabaseURL = databaseURL
	}
	if s.DatabaseURL == "" {
		return s, errors.New("database URL is required: set DATABASE_URL or --database-url")
	}
	return s, nil
}

// openDB loads settings and connects to the database.
func openDB(ctx context.Context) (*database.DB, settings, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, s, err
	}
	db, err := database.Open(ctx, s.DatabaseURL, database.WithMaxConns(2))
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}
