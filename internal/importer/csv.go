package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/http-api/models"
)

// record is one CSV row keyed by header name
type record map[string]string

func readRecords(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := make(record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			}
		}
		records = append(records, rec)
	}
}

func (r record) int64(name string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(r[name]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return v, nil
}

func (r record) int(name string) (int, error) {
	v, err := r.int64(name)
	return int(v), err
}

func (r record) time(name string) (time.Time, error) {
	raw := strings.TrimSpace(r[name])
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: unrecognised time %q", name, raw)
}

func parseCategories(r io.Reader) ([]models.Category, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(records))
	for _, rec := range records {
		id, err := rec.int64("id")
		if err != nil {
			return nil, err
		}
		out = append(out, models.Category{ID: id, Name: rec["name"], Slug: rec["slug"]})
	}
	return out, nil
}

func parseGenres(r io.Reader) ([]models.Genre, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.Genre, 0, len(records))
	for _, rec := range records {
		id, err := rec.int64("id")
		if err != nil {
			return nil, err
		}
		out = append(out, models.Genre{ID: id, Name: rec["name"], Slug: rec["slug"]})
	}
	return out, nil
}

func parseTitles(r io.Reader) ([]models.Title, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.Title, 0, len(records))
	for _, rec := range records {
		id, err := rec.int64("id")
		if err != nil {
			return nil, err
		}
		year, err := rec.int("year")
		if err != nil {
			return nil, err
		}
		title := models.Title{ID: id, Name: rec["name"], Year: year}
		if desc := rec["description"]; desc != "" {
			title.Description = &desc
		}
		if strings.TrimSpace(rec["category"]) != "" {
			categoryID, err := rec.int64("category")
			if err != nil {
				return nil, err
			}
			title.CategoryID = &categoryID
		}
		out = append(out, title)
	}
	return out, nil
}

func parseGenreTitles(r io.Reader) ([]models.GenreTitle, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]models.GenreTitle, 0, len(records))
	for _, rec := range records {
		id, err := rec.int64("id")
		if err != nil {
			return nil, err
		}
		titleID, err := rec.int64("title_id")
		if err != nil {
			return nil, err
		}
		genreID, err := rec.int64("genre_id")
		if err != nil {
			return nil, err
		}
		out = append(out, models.GenreTitle{ID: id, TitleID: titleID, GenreID: genreID})
	}
	return out, nil
}

// legacyUser keeps the numeric id the reviews and comments refer to
type legacyUser struct {
	LegacyID int64
	User     models.User
}

func parseUsers(r io.Reader) ([]legacyUser, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]legacyUser, 0, len(records))
	for _, rec := range records {
		id, err := rec.int64("id")
		if err != nil {
			return nil, err
		}
		role := models.Role(strings.TrimSpace(rec["role"]))
		if role == "" {
			role = models.RoleUser
		}
		if !role.Valid() {
			return nil, fmt.Errorf("user %d: unknown role %q", id, role)
		}
		out = append(out, legacyUser{
			LegacyID: id,
			User: models.User{
				Username:  rec["username"],
				Email:     rec["email"],
				Role:      role,
				Bio:       rec["bio"],
				FirstName: rec["first_name"],
				LastName:  rec["last_name"],
			},
		})
	}
	return out, nil
}

// legacyAuthored is a review or comment row whose author is a legacy user id
type legacyAuthored[T any] struct {
	Author int64
	Row    T
}

func parseReviews(r io.Reader) ([]legacyAuthored[models.Review], error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]legacyAuthored[models.Review], 0, len(records))
	for _, rec := range records {
		id, err := rec.int64("id")
		if err != nil {
			return nil, err
		}
		titleID, err := rec.int64("title_id")
		if err != nil {
			return nil, err
		}
		author, err := rec.int64("author")
		if err != nil {
			return nil, err
		}
		score, err := rec.int("score")
		if err != nil {
			return nil, err
		}
		if score < models.MinScore || score > models.MaxScore {
			return nil, fmt.Errorf("review %d: score %d out of range", id, score)
		}
		pubDate, err := rec.time("pub_date")
		if err != nil {
			return nil, err
		}
		out = append(out, legacyAuthored[models.Review]{
			Author: author,
			Row:    models.Review{ID: id, TitleID: titleID, Text: rec["text"], Score: score, PubDate: pubDate},
		})
	}
	return out, nil
}

func parseComments(r io.Reader) ([]legacyAuthored[models.Comment], error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]legacyAuthored[models.Comment], 0, len(records))
	for _, rec := range records {
		id, err := rec.int64("id")
		if err != nil {
			return nil, err
		}
		reviewID, err := rec.int64("review_id")
		if err != nil {
			return nil, err
		}
		author, err := rec.int64("author")
		if err != nil {
			return nil, err
		}
		pubDate, err := rec.time("pub_date")
		if err != nil {
			return nil, err
		}
		out = append(out, legacyAuthored[models.Comment]{
			Author: author,
			Row:    models.Comment{ID: id, ReviewID: reviewID, Text: rec["text"], PubDate: pubDate},
		})
	}
	return out, nil
}
