package repository

import (
	"context"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows title listings; zero values mean no filter.
type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Year     *int
	Name     string // case-insensitive substring
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page Pagination) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	LockByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title) error
	ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
	SetRating(ctx context.Context, id int64, rating *int) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page Pagination) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := conn(ctx, r.db).Model(&models.Title{})
	if filter.Category != "" {
		q = q.Where("titles.category_id IN (?)",
			conn(ctx, r.db).Model(&models.Category{}).Select("id").Where("slug = ?", filter.Category))
	}
	if filter.Genre != "" {
		q = q.Where("titles.id IN (?)",
			conn(ctx, r.db).Table("genre_titles gt").
				Select("gt.title_id").
				Joins("JOIN genres g ON g.id = gt.genre_id").
				Where("g.slug = ?", filter.Genre))
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}
	if filter.Name != "" {
		q = q.Where("titles.name ILIKE ?", containsPattern(filter.Name))
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count titles", err)
	}
	if err := page.apply(q.Preload("Category").Preload("Genres", orderGenres).
		Order("titles.year desc").Order("titles.name asc")).
		Find(&list).Error; err != nil {
		return nil, 0, translate("list titles", err)
	}
	return list, total, nil
}

func orderGenres(db *gorm.DB) *gorm.DB {
	return db.Order("genres.name asc")
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := conn(ctx, r.db).Preload("Category").Preload("Genres", orderGenres).First(&t, id).Error; err != nil {
		return nil, translate("get title", err)
	}
	return &t, nil
}

// LockByID loads the title row with FOR UPDATE; only meaningful inside a transaction.
func (r *titleRepository) LockByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error; err != nil {
		return nil, translate("lock title", err)
	}
	return &t, nil
}

// Create inserts the title and its genre links; genre rows themselves are not touched.
func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	return translate("create title", conn(ctx, r.db).Omit("Genres.*", "Category", "Rating").Create(t).Error)
}

// Update writes the client-editable columns; rating is left alone.
func (r *titleRepository) Update(ctx context.Context, t *models.Title) error {
	err := conn(ctx, r.db).Model(t).
		Select("name", "year", "description", "category_id").
		Updates(t).Error
	return translate("update title", err)
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	err := conn(ctx, r.db).Model(t).Omit("Genres.*").Association("Genres").Replace(genres)
	return translate("replace title genres", err)
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Delete(&models.Title{}, id)
	if result.Error != nil {
		return translate("delete title", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete title", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *titleRepository) SetRating(ctx context.Context, id int64, rating *int) error {
	var value interface{} = gorm.Expr("NULL")
	if rating != nil {
		value = *rating
	}
	err := conn(ctx, r.db).Model(&models.Title{}).Where("id = ?", id).Update("rating", value).Error
	return translate("set title rating", err)
}
