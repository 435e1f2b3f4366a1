package service

import (
	"context"
	"log/slog"

	"yamdb/internal/http-api/repository"
	"yamdb/internal/metrics"
)

// ComputeRating is the integer part of the mean score, or nil for a title
// nobody has reviewed.
func ComputeRating(count, sum int64) *int {
	if count == 0 {
		return nil
	}
	rating := int(sum / count)
	return &rating
}

// RatingUpdater stores the derived rating of a title. Callers run Recompute in
// the same transaction as the review write, after locking the title row.
type RatingUpdater struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
}

func NewRatingUpdater(reviews repository.ReviewRepository, titles repository.TitleRepository) *RatingUpdater {
	return &RatingUpdater{reviews: reviews, titles: titles}
}

func (u *RatingUpdater) Recompute(ctx context.Context, titleID int64) (*int, error) {
	stats, err := u.reviews.ScoreStats(ctx, titleID)
	if err != nil {
		return nil, err
	}
	rating := ComputeRating(stats.Count, stats.Sum)
	if err := u.titles.SetRating(ctx, titleID, rating); err != nil {
		return nil, err
	}

	metrics.RatingRecomputes.Inc()
	slog.DebugContext(ctx, "title rating recomputed",
		"title_id", titleID,
		"reviews", stats.Count,
		"rating", ratingAttr(rating),
	)
	return rating, nil
}

func ratingAttr(r *int) any {
	if r == nil {
		return "none"
	}
	return *r
}
