package service

import (
	"context"
	"time"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page repository.Pagination) (*dto.Page[dto.CommentResponse], error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, titleID, reviewID int64, author *models.User, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Update(ctx context.Context, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO, authorize Authorizer) (*dto.CommentResponse, error)
	Delete(ctx context.Context, titleID, reviewID, commentID int64, authorize Authorizer) error
}

type commentService struct {
	tx       repository.Transactor
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
}

func NewCommentService(tx repository.Transactor, comments repository.CommentRepository, reviews repository.ReviewRepository) CommentService {
	return &commentService{
		tx:       tx,
		comments: comments,
		reviews:  reviews,
	}
}

// review resolves the parent review, which must belong to the title in the path
func (s *commentService) review(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviews.GetByID(ctx, titleID, reviewID); err != nil {
		return notFound("review", err)
	}
	return nil
}

// List retrieves all comments for a review with pagination
func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page repository.Pagination) (*dto.Page[dto.CommentResponse], error) {
	if err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.comments.ListByReview(ctx, reviewID, page)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		data = append(data, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPage(data, int(total), page.Page, page.PageSize), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound("comment", err)
	}
	return dto.FromModelToCommentResponse(comment), nil
}

// Create a new comment on a review
func (s *commentService) Create(ctx context.Context, titleID, reviewID int64, author *models.User, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: author.ID,
		Text:     req.Text,
		PubDate:  time.Now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = *author
	return dto.FromModelToCommentResponse(comment), nil
}

// Update edits a comment under a row lock, after authorize accepts it
func (s *commentService) Update(ctx context.Context, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO, authorize Authorizer) (*dto.CommentResponse, error) {
	if req.Text != nil && *req.Text == "" {
		return nil, fieldError("text", "this field may not be blank")
	}

	var comment *models.Comment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.review(ctx, titleID, reviewID); err != nil {
			return err
		}
		locked, err := s.comments.LockByID(ctx, reviewID, commentID)
		if err != nil {
			return notFound("comment", err)
		}
		if err := authorize.check(locked); err != nil {
			return err
		}

		if req.Text != nil {
			locked.Text = *req.Text
			if err := s.comments.Update(ctx, locked); err != nil {
				return err
			}
		}
		comment, err = s.comments.GetByID(ctx, reviewID, commentID)
		return notFound("comment", err)
	})
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, titleID, reviewID, commentID int64, authorize Authorizer) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.review(ctx, titleID, reviewID); err != nil {
			return err
		}
		comment, err := s.comments.LockByID(ctx, reviewID, commentID)
		if err != nil {
			return notFound("comment", err)
		}
		if err := authorize.check(comment); err != nil {
			return err
		}
		return notFound("comment", s.comments.Delete(ctx, commentID))
	})
}
