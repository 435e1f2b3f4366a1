package dto

import (
	"time"

	"yamdb/internal/http-api/models"
)

// CreateCommentDTO for posting or editing a comment
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required"`
}

type UpdateCommentDTO struct {
	Text *string `json:"text" binding:"omitempty,min=1"`
}

// CommentResponse for returning comment information
type CommentResponse struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	Author   string    `json:"author"`
	PubDate  time.Time `json:"pub_date"`
	AuthorID string    `json:"-"`
}

func (c *CommentResponse) OwnerID() string {
	return c.AuthorID
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:       comment.ID,
		Text:     comment.Text,
		Author:   comment.Author.Username,
		PubDate:  comment.PubDate,
		AuthorID: comment.AuthorID,
	}
}
