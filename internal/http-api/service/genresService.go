package service

import (
	"context"
	"errors"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/validation"
)

type GenreService interface {
	List(ctx context.Context, search string, page repository.Pagination) (*dto.Page[dto.GenreResponse], error)
	Create(ctx context.Context, req dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(repo repository.GenreRepository) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) List(ctx context.Context, search string, page repository.Pagination) (*dto.Page[dto.GenreResponse], error) {
	genres, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		return nil, err
	}
	data := make([]dto.GenreResponse, 0, len(genres))
	for i := range genres {
		data = append(data, *dto.FromModelToGenreResponse(&genres[i]))
	}
	return dto.NewPage(data, int(total), page.Page, page.PageSize), nil
}

func (s *genreService) Create(ctx context.Context, req dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if err := validation.Slug(req.Slug); err != nil {
		return nil, fieldError("slug", err.Error())
	}

	genre := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("slug", "genre with this slug already exists")
		}
		return nil, err
	}
	return dto.FromModelToGenreResponse(genre), nil
}

// Delete removes a genre and its links to titles
func (s *genreService) Delete(ctx context.Context, slug string) error {
	return notFound("genre", s.repo.DeleteBySlug(ctx, slug))
}
