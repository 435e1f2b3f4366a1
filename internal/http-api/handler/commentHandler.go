package handler

import (
	"net/http"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes registers comment routes on the /titles group
func (h *CommentHandler) RegisterRoutes(titles *gin.RouterGroup) {
	comments := titles.Group("/:title_id/reviews/:review_id/comments")
	{
		perms := middleware.Require(authoredContent...)
		comments.GET("", perms, h.List)
		comments.POST("", perms, h.Create)
		comments.GET("/:comment_id", perms, h.Get)
		comments.PATCH("/:comment_id", perms, h.Update)
		comments.DELETE("/:comment_id", perms, h.Delete)
		comments.PUT("/:comment_id", methodNotAllowed)
	}
}

// parent reads the title and review ids from the path
func parent(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = pathID(c, "title_id"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = pathID(c, "review_id"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// List retrieves all comments for a review with pagination
// GET /api/v1/titles/:title_id/reviews/:review_id/comments/
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := parent(c)
	if !ok {
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), titleID, reviewID, pagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// GET /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id/
func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := parent(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	comment, err := h.commentService.Get(c.Request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Create a new comment on a review
// POST /api/v1/titles/:title_id/reviews/:review_id/comments/
func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := parent(c)
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), titleID, reviewID, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id/
func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, commentID, ok := h.authorize(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), titleID, reviewID, commentID, req, ownerCheck(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id/
func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, commentID, ok := h.authorize(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), titleID, reviewID, commentID, ownerCheck(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) authorize(c *gin.Context) (titleID, reviewID, commentID int64, ok bool) {
	if titleID, reviewID, ok = parent(c); !ok {
		return 0, 0, 0, false
	}
	if commentID, ok = pathID(c, "comment_id"); !ok {
		return 0, 0, 0, false
	}

	comment, err := h.commentService.Get(c.Request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return 0, 0, 0, false
	}
	if err := permission.CheckObject(middleware.PermissionRequest(c), comment, authoredContent...); err != nil {
		middleware.AbortWithPermissionError(c, err)
		return 0, 0, 0, false
	}
	return titleID, reviewID, commentID, true
}
