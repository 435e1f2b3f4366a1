package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/validation"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page repository.Pagination) (*dto.Page[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	tx         repository.Transactor
	titles     repository.TitleRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
}

func NewTitleService(
	tx repository.Transactor,
	titles repository.TitleRepository,
	categories repository.CategoryRepository,
	genres repository.GenreRepository,
) TitleService {
	return &titleService{
		tx:         tx,
		titles:     titles,
		categories: categories,
		genres:     genres,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page repository.Pagination) (*dto.Page[dto.TitleResponse], error) {
	titles, total, err := s.titles.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	data := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		data = append(data, *dto.FromModelToTitleResponse(&titles[i]))
	}
	return dto.NewPage(data, int(total), page.Page, page.PageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("title", err)
	}
	return dto.FromModelToTitleResponse(title), nil
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if err := validation.Year(req.Year, time.Now()); err != nil {
		return nil, fieldError("year", err.Error())
	}

	var categoryID *int64
	if req.Category != nil {
		category, err := s.category(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		categoryID = &category.ID
	}
	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  categoryID,
		Genres:      genres,
	}
	if err := s.titles.Create(ctx, title); err != nil {
		return nil, err
	}

	return s.Get(ctx, title.ID)
}

// Update applies a partial update; a genre list replaces the current one
func (s *titleService) Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	if req.Year != nil {
		if err := validation.Year(*req.Year, time.Now()); err != nil {
			return nil, fieldError("year", err.Error())
		}
	}
	if req.Name != nil && *req.Name == "" {
		return nil, fieldError("name", "this field may not be blank")
	}
	if req.Genre != nil && len(req.Genre) == 0 {
		return nil, fieldError("genre", "must contain at least 1 item(s)")
	}
	if req.Category.Value != nil {
		if err := validation.Slug(*req.Category.Value); err != nil {
			return nil, fieldError("category", err.Error())
		}
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		title, err := s.titles.GetByID(ctx, id)
		if err != nil {
			return notFound("title", err)
		}

		if req.Name != nil {
			title.Name = *req.Name
		}
		if req.Year != nil {
			title.Year = *req.Year
		}
		if req.Description != nil {
			title.Description = req.Description
		}
		if req.Category.Set {
			title.Category = nil
			title.CategoryID = nil
			if req.Category.Value != nil {
				category, err := s.category(ctx, *req.Category.Value)
				if err != nil {
					return err
				}
				title.CategoryID = &category.ID
			}
		}
		if err := s.titles.Update(ctx, title); err != nil {
			return err
		}

		if req.Genre != nil {
			genres, err := s.resolveGenres(ctx, req.Genre)
			if err != nil {
				return err
			}
			if err := s.titles.ReplaceGenres(ctx, title, genres); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	return notFound("title", s.titles.Delete(ctx, id))
}

func (s *titleService) category(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fieldError("category", fmt.Sprintf("object with slug %q does not exist", slug))
	}
	return category, err
}

// resolveGenres loads every referenced genre or reports the unknown slugs
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	wanted := make(map[string]struct{}, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if _, ok := wanted[slug]; ok {
			continue
		}
		wanted[slug] = struct{}{}
		unique = append(unique, slug)
	}

	genres, err := s.genres.GetBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, g := range genres {
		delete(wanted, g.Slug)
	}
	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for slug := range wanted {
			missing = append(missing, slug)
		}
		sort.Strings(missing)
		return nil, fieldError("genre", fmt.Sprintf("objects with slug %s do not exist", strings.Join(missing, ", ")))
	}
	return genres, nil
}
