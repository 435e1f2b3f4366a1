package service

import (
	"context"
	"errors"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/validation"
)

type CategoryService interface {
	List(ctx context.Context, search string, page repository.Pagination) (*dto.Page[dto.CategoryResponse], error)
	Create(ctx context.Context, req dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, search string, page repository.Pagination) (*dto.Page[dto.CategoryResponse], error) {
	categories, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		data = append(data, *dto.FromModelToCategoryResponse(&categories[i]))
	}
	return dto.NewPage(data, int(total), page.Page, page.PageSize), nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	if err := validation.Slug(req.Slug); err != nil {
		return nil, fieldError("slug", err.Error())
	}

	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("slug", "category with this slug already exists")
		}
		return nil, err
	}
	return dto.FromModelToCategoryResponse(category), nil
}

// Delete removes a category; its titles keep existing without one
func (s *categoryService) Delete(ctx context.Context, slug string) error {
	return notFound("category", s.repo.DeleteBySlug(ctx, slug))
}
