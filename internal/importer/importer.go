// Package importer loads the catalog fixtures shipped as CSV files into the
// database: categories, genres, titles and their genre links, users, reviews
// and comments. The whole directory is imported in one transaction.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"

	"gorm.io/gorm"
)

const batchSize = 200

// File names looked up in the import directory.
const (
	CategoriesFile  = "category.csv"
	GenresFile      = "genre.csv"
	TitlesFile      = "titles.csv"
	GenreTitlesFile = "genre_title.csv"
	UsersFile       = "users.csv"
	ReviewsFile     = "review.csv"
	CommentsFile    = "comments.csv"
)

// Report counts the rows written per table.
type Report struct {
	Categories  int
	Genres      int
	Titles      int
	GenreTitles int
	Users       int
	Reviews     int
	Comments    int
	Rated       int
}

type Importer struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{db: db, logger: logger}
}

// ImportDir reads the fixture files from dir. Missing files are skipped.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*Report, error) {
	return im.Import(ctx, os.DirFS(dir))
}

func (im *Importer) Import(ctx context.Context, fsys fs.FS) (*Report, error) {
	report := &Report{}
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			file string
			run  func(tx *gorm.DB, r io.Reader) error
		}{
			{CategoriesFile, func(tx *gorm.DB, r io.Reader) error {
				rows, err := parseCategories(r)
				if err != nil {
					return err
				}
				report.Categories = len(rows)
				return insert(tx, rows)
			}},
			{GenresFile, func(tx *gorm.DB, r io.Reader) error {
				rows, err := parseGenres(r)
				if err != nil {
					return err
				}
				report.Genres = len(rows)
				return insert(tx, rows)
			}},
			{TitlesFile, func(tx *gorm.DB, r io.Reader) error {
				rows, err := parseTitles(r)
				if err != nil {
					return err
				}
				report.Titles = len(rows)
				return insert(tx.Omit("Genres", "Category"), rows)
			}},
			{GenreTitlesFile, func(tx *gorm.DB, r io.Reader) error {
				rows, err := parseGenreTitles(r)
				if err != nil {
					return err
				}
				report.GenreTitles = len(rows)
				return insert(tx, rows)
			}},
		}

		for _, step := range steps {
			if err := withFile(fsys, step.file, func(r io.Reader) error { return step.run(tx, r) }); err != nil {
				return fmt.Errorf("%s: %w", step.file, err)
			}
		}

		authors, err := im.importUsers(tx, fsys, report)
		if err != nil {
			return err
		}
		if err := im.importReviews(tx, fsys, authors, report); err != nil {
			return err
		}
		if err := im.importComments(tx, fsys, authors, report); err != nil {
			return err
		}

		if err := resetSequences(tx, "categories", "genres", "titles", "genre_titles", "reviews", "comments"); err != nil {
			return err
		}

		rated, err := recomputeRatings(ctx, tx)
		if err != nil {
			return err
		}
		report.Rated = rated
		return nil
	})
	if err != nil {
		im.logger.Error("Import failed", "error", err)
		return nil, err
	}

	im.logger.Info("Import completed",
		"categories", report.Categories,
		"genres", report.Genres,
		"titles", report.Titles,
		"genre_titles", report.GenreTitles,
		"users", report.Users,
		"reviews", report.Reviews,
		"comments", report.Comments,
		"rated_titles", report.Rated,
	)
	return report, nil
}

// importUsers inserts users with fresh ids and returns legacy id -> new id.
func (im *Importer) importUsers(tx *gorm.DB, fsys fs.FS, report *Report) (map[int64]string, error) {
	authors := map[int64]string{}
	err := withFile(fsys, UsersFile, func(r io.Reader) error {
		rows, err := parseUsers(r)
		if err != nil {
			return err
		}
		users := make([]models.User, len(rows))
		for i := range rows {
			users[i] = rows[i].User
		}
		if err := insert(tx, users); err != nil {
			return err
		}
		for i := range rows {
			authors[rows[i].LegacyID] = users[i].ID
		}
		report.Users = len(users)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", UsersFile, err)
	}
	return authors, nil
}

func (im *Importer) importReviews(tx *gorm.DB, fsys fs.FS, authors map[int64]string, report *Report) error {
	err := withFile(fsys, ReviewsFile, func(r io.Reader) error {
		rows, err := parseReviews(r)
		if err != nil {
			return err
		}
		reviews, err := resolveAuthors(rows, authors, func(rv *models.Review, id string) { rv.AuthorID = id })
		if err != nil {
			return err
		}
		report.Reviews = len(reviews)
		return insert(tx.Omit("Title", "Author"), reviews)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", ReviewsFile, err)
	}
	return nil
}

func (im *Importer) importComments(tx *gorm.DB, fsys fs.FS, authors map[int64]string, report *Report) error {
	err := withFile(fsys, CommentsFile, func(r io.Reader) error {
		rows, err := parseComments(r)
		if err != nil {
			return err
		}
		comments, err := resolveAuthors(rows, authors, func(c *models.Comment, id string) { c.AuthorID = id })
		if err != nil {
			return err
		}
		report.Comments = len(comments)
		return insert(tx.Omit("Review", "Author"), comments)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", CommentsFile, err)
	}
	return nil
}

func resolveAuthors[T any](rows []legacyAuthored[T], authors map[int64]string, set func(*T, string)) ([]T, error) {
	out := make([]T, len(rows))
	for i, row := range rows {
		id, ok := authors[row.Author]
		if !ok {
			return nil, fmt.Errorf("row %d: unknown author %d", i+1, row.Author)
		}
		out[i] = row.Row
		set(&out[i], id)
	}
	return out, nil
}

func withFile(fsys fs.FS, name string, fn func(io.Reader) error) error {
	f, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Import file not found, skipping", "file", name)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func insert[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}

// resetSequences moves serial sequences past the explicit ids just inserted.
func resetSequences(tx *gorm.DB, tables ...string) error {
	for _, table := range tables {
		q := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 1), (SELECT MAX(id) FROM %[1]s) IS NOT NULL)`,
			table,
		)
		if err := tx.Exec(q).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}

func recomputeRatings(ctx context.Context, tx *gorm.DB) (int, error) {
	var titleIDs []int64
	if err := tx.Model(&models.Review{}).Distinct("title_id").Pluck("title_id", &titleIDs).Error; err != nil {
		return 0, fmt.Errorf("list reviewed titles: %w", err)
	}

	updater := service.NewRatingUpdater(repository.NewReviewRepository(tx), repository.NewTitleRepository(tx))
	for _, id := range titleIDs {
		if _, err := updater.Recompute(ctx, id); err != nil {
			return 0, fmt.Errorf("recompute rating of title %d: %w", id, err)
		}
	}
	return len(titleIDs), nil
}

// ResolveDir returns dir as an absolute path, checking it is a directory.
func ResolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
