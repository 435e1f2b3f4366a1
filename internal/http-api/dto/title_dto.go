package dto

import "yamdb/internal/http-api/models"

// CreateTitleDTO references its category and genres by slug; a title may
// have no category
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required,notfuture"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" binding:"required,min=1,dive,slug"`
	Category    *string  `json:"category" binding:"omitempty,slug"`
}

// UpdateTitleDTO is a partial update, nil fields are left unchanged.
// Category distinguishes an absent field from null, which clears it.
type UpdateTitleDTO struct {
	Name        *string          `json:"name" binding:"omitempty,max=256"`
	Year        *int             `json:"year" binding:"omitempty,notfuture"`
	Description *string          `json:"description"`
	Genre       []string         `json:"genre" binding:"omitempty,dive,slug"`
	Category    Nullable[string] `json:"category"`
}

type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *int              `json:"rating"`
	Description *string           `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

func FromModelToTitleResponse(t *models.Title) *TitleResponse {
	genres := make([]GenreResponse, 0, len(t.Genres))
	for i := range t.Genres {
		genres = append(genres, *FromModelToGenreResponse(&t.Genres[i]))
	}

	resp := &TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
	}
	if t.Category != nil {
		resp.Category = FromModelToCategoryResponse(t.Category)
	}
	return resp
}
