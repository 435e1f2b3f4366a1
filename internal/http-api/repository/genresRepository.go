package repository

import (
	"context"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	List(ctx context.Context, search string, page Pagination) ([]models.Genre, int64, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) List(ctx context.Context, search string, page Pagination) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	q := conn(ctx, r.db).Model(&models.Genre{})
	if search != "" {
		q = q.Where("name ILIKE ?", containsPattern(search))
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count genres", err)
	}
	if err := page.apply(q.Order("name asc")).Find(&list).Error; err != nil {
		return nil, 0, translate("list genres", err)
	}
	return list, total, nil
}

// GetBySlugs returns the genres matching slugs; missing slugs are simply absent.
func (r *genreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var list []models.Genre
	if len(slugs) == 0 {
		return list, nil
	}
	if err := conn(ctx, r.db).Where("slug IN ?", slugs).Order("name asc").Find(&list).Error; err != nil {
		return nil, translate("get genres by slug", err)
	}
	return list, nil
}

func (r *genreRepository) Create(ctx context.Context, g *models.Genre) error {
	return translate("create genre", conn(ctx, r.db).Create(g).Error)
}

// DeleteBySlug removes the genre; only its title links cascade.
func (r *genreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result := conn(ctx, r.db).Where("slug = ?", slug).Delete(&models.Genre{})
	if result.Error != nil {
		return translate("delete genre", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete genre", gorm.ErrRecordNotFound)
	}
	return nil
}
