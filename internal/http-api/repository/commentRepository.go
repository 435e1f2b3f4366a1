package repository

import (
	"context"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, reviewID, id int64) (*models.Comment, error)
	LockByID(ctx context.Context, reviewID, id int64) (*models.Comment, error)
	ListByReview(ctx context.Context, reviewID int64, page Pagination) ([]models.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate("create comment", conn(ctx, r.db).Omit("Review", "Author").Create(comment).Error)
}

// Update the text of an existing comment
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := conn(ctx, r.db).Model(comment).Select("text").Updates(comment).Error
	return translate("update comment", err)
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return translate("delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete comment", gorm.ErrRecordNotFound)
	}
	return nil
}

// GetByID retrieves a comment that belongs to the given review
func (r *commentRepository) GetByID(ctx context.Context, reviewID, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := conn(ctx, r.db).Where("id = ? AND review_id = ?", id, reviewID).
		Preload("Author").
		First(&comment).Error
	if err != nil {
		return nil, translate("get comment", err)
	}
	return &comment, nil
}

// LockByID loads the comment row with FOR UPDATE and without its author;
// only meaningful inside a transaction.
func (r *commentRepository) LockByID(ctx context.Context, reviewID, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND review_id = ?", id, reviewID).
		First(&comment).Error
	if err != nil {
		return nil, translate("lock comment", err)
	}
	return &comment, nil
}

// ListByReview retrieves all comments for a review with pagination
func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64, page Pagination) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := conn(ctx, r.db).Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, translate("count comments", err)
	}

	err := page.apply(conn(ctx, r.db).Where("review_id = ?", reviewID).
		Preload("Author").
		Order("pub_date DESC").Order("id DESC")).
		Find(&comments).Error
	if err != nil {
		return nil, 0, translate("list comments", err)
	}
	return comments, total, nil
}
