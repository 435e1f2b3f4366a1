package dto

import (
	"time"

	"yamdb/internal/http-api/models"
)

// CreateReviewDTO for posting a review on a title
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required"`
	Score *int   `json:"score" binding:"required,min=1,max=10"` // pointer so 0 reports the range, not "required"
}

// UpdateReviewDTO for partially updating a review
type UpdateReviewDTO struct {
	Text  *string `json:"text" binding:"omitempty,min=1"`
	Score *int    `json:"score" binding:"omitempty,min=1,max=10"`
}

// ReviewResponse for returning review information
type ReviewResponse struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	Author   string    `json:"author"`
	Score    int       `json:"score"`
	PubDate  time.Time `json:"pub_date"`
	AuthorID string    `json:"-"`
}

func (r *ReviewResponse) OwnerID() string {
	return r.AuthorID
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:       review.ID,
		Text:     review.Text,
		Author:   review.Author.Username,
		Score:    review.Score,
		PubDate:  review.PubDate,
		AuthorID: review.AuthorID,
	}
}
