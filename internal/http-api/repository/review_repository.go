package repository

import (
	"context"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
)

// ScoreStats is the aggregate the title rating is derived from.
type ScoreStats struct {
	Count int64
	Sum   int64
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, titleID, id int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page Pagination) ([]models.Review, int64, error)
	ExistsByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (bool, error)
	ScoreStats(ctx context.Context, titleID int64) (ScoreStats, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create a new review
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translate("create review", conn(ctx, r.db).Omit("Title", "Author").Create(review).Error)
}

// Update writes the mutable fields of an existing review
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := conn(ctx, r.db).Model(review).Select("text", "score").Updates(review).Error
	return translate("update review", err)
}

// Delete a review by id
func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Delete(&models.Review{}, id)
	if result.Error != nil {
		return translate("delete review", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete review", gorm.ErrRecordNotFound)
	}
	return nil
}

// GetByID retrieves a review that belongs to the given title
func (r *reviewRepository) GetByID(ctx context.Context, titleID, id int64) (*models.Review, error) {
	var review models.Review
	err := conn(ctx, r.db).Where("id = ? AND title_id = ?", id, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, translate("get review", err)
	}
	return &review, nil
}

// ListByTitle retrieves the reviews of a title with pagination, newest first
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page Pagination) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := conn(ctx, r.db).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, translate("count reviews", err)
	}

	err := page.apply(conn(ctx, r.db).Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC").Order("id DESC")).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, translate("list reviews", err)
	}
	return reviews, total, nil
}

func (r *reviewRepository) ExistsByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		return false, translate("check review exists", err)
	}
	return count > 0, nil
}

// ScoreStats counts and sums the scores of a title's reviews
func (r *reviewRepository) ScoreStats(ctx context.Context, titleID int64) (ScoreStats, error) {
	var stats ScoreStats
	err := conn(ctx, r.db).Model(&models.Review{}).
		Select("COUNT(score) AS count, COALESCE(SUM(score), 0) AS sum").
		Where("title_id = ?", titleID).
		Scan(&stats).Error
	if err != nil {
		return ScoreStats{}, translate("aggregate review scores", err)
	}
	return stats, nil
}
