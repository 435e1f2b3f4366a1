package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/metrics"
)

var errReviewExists = conflictError("detail", "you have already reviewed this title")

type ReviewService interface {
	List(ctx context.Context, titleID int64, page repository.Pagination) (*dto.Page[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, titleID int64, author *models.User, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, titleID, reviewID int64, req dto.UpdateReviewDTO, authorize Authorizer) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, titleID, reviewID int64, authorize Authorizer) error
}

type reviewService struct {
	tx      repository.Transactor
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
	rating  *RatingUpdater
}

func NewReviewService(tx repository.Transactor, reviews repository.ReviewRepository, titles repository.TitleRepository) ReviewService {
	return &reviewService{
		tx:      tx,
		reviews: reviews,
		titles:  titles,
		rating:  NewRatingUpdater(reviews, titles),
	}
}

// List retrieves the reviews of a title with pagination
func (s *reviewService) List(ctx context.Context, titleID int64, page repository.Pagination) (*dto.Page[dto.ReviewResponse], error) {
	if _, err := s.titles.GetByID(ctx, titleID); err != nil {
		return nil, notFound("title", err)
	}

	reviews, total, err := s.reviews.ListByTitle(ctx, titleID, page)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		data = append(data, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPage(data, int(total), page.Page, page.PageSize), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound("review", err)
	}
	return dto.FromModelToReviewResponse(review), nil
}

// Create stores the author's review of a title and refreshes the title rating
// in the same transaction
func (s *reviewService) Create(ctx context.Context, titleID int64, author *models.User, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if req.Score == nil {
		return nil, fieldError("score", "this field is required")
	}
	if err := checkScore(*req.Score); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Text:     req.Text,
		Score:    *req.Score,
		PubDate:  time.Now().UTC(),
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.titles.LockByID(ctx, titleID); err != nil {
			return notFound("title", err)
		}

		exists, err := s.reviews.ExistsByTitleAndAuthor(ctx, titleID, author.ID)
		if err != nil {
			return err
		}
		if exists {
			return errReviewExists
		}

		if err := s.reviews.Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return errReviewExists
			}
			return err
		}

		_, err = s.rating.Recompute(ctx, titleID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReviewWrite("create")
	review.Author = *author
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Update(ctx context.Context, titleID, reviewID int64, req dto.UpdateReviewDTO, authorize Authorizer) (*dto.ReviewResponse, error) {
	if req.Score != nil {
		if err := checkScore(*req.Score); err != nil {
			return nil, err
		}
	}
	if req.Text != nil && *req.Text == "" {
		return nil, fieldError("text", "this field may not be blank")
	}

	var review *models.Review
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.titles.LockByID(ctx, titleID); err != nil {
			return notFound("title", err)
		}

		var err error
		review, err = s.reviews.GetByID(ctx, titleID, reviewID)
		if err != nil {
			return notFound("review", err)
		}
		if err := authorize.check(review); err != nil {
			return err
		}

		if req.Text != nil {
			review.Text = *req.Text
		}
		if req.Score != nil {
			review.Score = *req.Score
		}
		if err := s.reviews.Update(ctx, review); err != nil {
			return err
		}

		_, err = s.rating.Recompute(ctx, titleID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReviewWrite("update")
	return dto.FromModelToReviewResponse(review), nil
}

// Delete removes a review; the title lock taken first also serialises it
// against concurrent edits of the same review
func (s *reviewService) Delete(ctx context.Context, titleID, reviewID int64, authorize Authorizer) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.titles.LockByID(ctx, titleID); err != nil {
			return notFound("title", err)
		}
		review, err := s.reviews.GetByID(ctx, titleID, reviewID)
		if err != nil {
			return notFound("review", err)
		}
		if err := authorize.check(review); err != nil {
			return err
		}
		if err := s.reviews.Delete(ctx, reviewID); err != nil {
			return notFound("review", err)
		}

		_, err = s.rating.Recompute(ctx, titleID)
		return err
	})
	if err != nil {
		return err
	}

	metrics.RecordReviewWrite("delete")
	return nil
}

func checkScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return fieldError("score", fmt.Sprintf("score must be between %d and %d", models.MinScore, models.MaxScore))
	}
	return nil
}
