package handler

import (
	"net/http"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type GenreHandler struct {
	genreService service.GenreService
}

func NewGenreHandler(genreService service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

func (h *GenreHandler) RegisterRoutes(router *gin.RouterGroup) {
	genres := router.Group("/genres")
	{
		admin := middleware.Require(permission.AdminOnly{})
		genres.GET("", h.List)
		genres.POST("", admin, h.Create)
		genres.DELETE("/:slug", admin, h.Delete)
		genres.GET("/:slug", methodNotAllowed)
		genres.PATCH("/:slug", methodNotAllowed)
	}
}

// GET /api/v1/genres/?search=
func (h *GenreHandler) List(c *gin.Context) {
	genres, err := h.genreService.List(c.Request.Context(), c.Query("search"), pagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

// POST /api/v1/genres/
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.CreateGenreDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	genre, err := h.genreService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

// DELETE /api/v1/genres/:slug/
func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.genreService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
