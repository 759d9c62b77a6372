package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iyunix/finsarthi/internal/database"
)

var migrateDSN string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := migrateDSN
		if dsn == "" {
			_ = godotenv.Load()
			dsn = os.Getenv("DATABASE_URL")
		}

		db, err := database.Open(dsn)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDSN, "database-url", "", "database to migrate (defaults to DATABASE_URL)")
}
