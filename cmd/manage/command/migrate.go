package command

import (
	"yamdb/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		return database.Migrate(e.db.Gorm, e.logger)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
