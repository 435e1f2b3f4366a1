package repository

import (
	"context"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	List(ctx context.Context, search string, page Pagination) ([]models.Category, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context, search string, page Pagination) ([]models.Category, int64, error) {
	var list []models.Category
	var total int64

	q := conn(ctx, r.db).Model(&models.Category{})
	if search != "" {
		q = q.Where("name ILIKE ?", containsPattern(search))
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count categories", err)
	}
	if err := page.apply(q.Order("name asc")).Find(&list).Error; err != nil {
		return nil, 0, translate("list categories", err)
	}
	return list, total, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := conn(ctx, r.db).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate("get category", err)
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	return translate("create category", conn(ctx, r.db).Create(c).Error)
}

// DeleteBySlug removes the category; titles keep existing with a null category.
func (r *categoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result := conn(ctx, r.db).Where("slug = ?", slug).Delete(&models.Category{})
	if result.Error != nil {
		return translate("delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete category", gorm.ErrRecordNotFound)
	}
	return nil
}
