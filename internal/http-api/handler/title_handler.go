package handler

import (
	"net/http"
	"strconv"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// RegisterRoutes registers the title routes on the /titles group; nested
// review and comment routes are registered by their own handlers
func (h *TitleHandler) RegisterRoutes(titles *gin.RouterGroup) {
	admin := middleware.Require(permission.AdminOnly{})

	titles.GET("", h.List)
	titles.POST("", admin, h.Create)
	titles.GET("/:title_id", h.Get)
	titles.PATCH("/:title_id", admin, h.Update)
	titles.DELETE("/:title_id", admin, h.Delete)
	titles.PUT("/:title_id", methodNotAllowed)
}

// List returns titles filtered by ?category=&genre=&year=&name=
// GET /api/v1/titles/
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	// an unparsable year is ignored rather than rejected
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = &year
	}

	titles, err := h.titleService.List(c.Request.Context(), filter, pagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, titles)
}

// GET /api/v1/titles/:title_id/
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	title, err := h.titleService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

// POST /api/v1/titles/
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	title, err := h.titleService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

// PATCH /api/v1/titles/:title_id/
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	var req dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	title, err := h.titleService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

// DELETE /api/v1/titles/:title_id/
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	if err := h.titleService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
