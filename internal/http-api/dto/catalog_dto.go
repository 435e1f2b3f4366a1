package dto

import "yamdb/internal/http-api/models"

type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromModelToCategoryResponse(c *models.Category) *CategoryResponse {
	return &CategoryResponse{Name: c.Name, Slug: c.Slug}
}

type CreateGenreDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromModelToGenreResponse(g *models.Genre) *GenreResponse {
	return &GenreResponse{Name: g.Name, Slug: g.Slug}
}
