package command

import (
	"fmt"

	"yamdb/database"
	"yamdb/internal/importer"

	"github.com/spf13/cobra"
)

var (
	importDir     string
	importMigrate bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load catalog fixtures from a directory of CSV files",
	Long: `Import reads category.csv, genre.csv, titles.csv, genre_title.csv, users.csv,
review.csv and comments.csv from the given directory and inserts them in a single
transaction. Missing files are skipped. Title ratings are recomputed afterwards.

Example:
  manage import --dir static/data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := importer.ResolveDir(importDir)
		if err != nil {
			return fmt.Errorf("invalid --dir: %w", err)
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		if importMigrate {
			if err := database.Migrate(e.db.Gorm, e.logger); err != nil {
				return err
			}
		}

		report, err := importer.New(e.db.Gorm, e.logger).ImportDir(cmd.Context(), dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported from %s\n", dir)
		fmt.Fprintf(out, "  categories:   %d\n", report.Categories)
		fmt.Fprintf(out, "  genres:       %d\n", report.Genres)
		fmt.Fprintf(out, "  titles:       %d (%d genre links)\n", report.Titles, report.GenreTitles)
		fmt.Fprintf(out, "  users:        %d\n", report.Users)
		fmt.Fprintf(out, "  reviews:      %d\n", report.Reviews)
		fmt.Fprintf(out, "  comments:     %d\n", report.Comments)
		fmt.Fprintf(out, "  rated titles: %d\n", report.Rated)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", "static/data", "directory holding the CSV files")
	importCmd.Flags().BoolVar(&importMigrate, "migrate", false, "apply migrations before importing")
	rootCmd.AddCommand(importCmd)
}
