package handler

import (
	"net/http"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// reviews and comments share one rule set: public reads, authenticated
// writes, edits by the author or staff
var authoredContent = []permission.Permission{
	permission.IsAuthenticatedOrReadOnly{},
	permission.IsAuthorOrModeratorOrAdmin{},
}

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review routes on the /titles group
func (h *ReviewHandler) RegisterRoutes(titles *gin.RouterGroup) {
	reviews := titles.Group("/:title_id/reviews")
	{
		perms := middleware.Require(authoredContent...)
		reviews.GET("", perms, h.List)
		reviews.POST("", perms, h.Create)
		reviews.GET("/:review_id", perms, h.Get)
		reviews.PATCH("/:review_id", perms, h.Update)
		reviews.DELETE("/:review_id", perms, h.Delete)
		reviews.PUT("/:review_id", methodNotAllowed)
	}
}

// List retrieves all reviews for a title with pagination
// GET /api/v1/titles/:title_id/reviews/?page=1&page_size=20
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.List(c.Request.Context(), titleID, pagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GET /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}

	review, err := h.reviewService.Get(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Create posts the current user's review of a title
// POST /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), titleID, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// Update edits a review; only its author, moderators and admins may
// PATCH /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := h.authorize(c)
	if !ok {
		return
	}

	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), titleID, reviewID, req, ownerCheck(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := h.authorize(c)
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), titleID, reviewID, ownerCheck(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ownerCheck repeats the object-level checks inside the service transaction,
// against the row the write will actually touch
func ownerCheck(c *gin.Context) service.Authorizer {
	req := middleware.PermissionRequest(c)
	return func(obj permission.Owned) error {
		return permission.CheckObject(req, obj, authoredContent...)
	}
}

// authorize loads the review and runs the object-level permission checks
// so a stranger gets 403 before the body is validated
func (h *ReviewHandler) authorize(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = pathID(c, "title_id"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = pathID(c, "review_id"); !ok {
		return 0, 0, false
	}

	review, err := h.reviewService.Get(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return 0, 0, false
	}
	if err := permission.CheckObject(middleware.PermissionRequest(c), review, authoredContent...); err != nil {
		middleware.AbortWithPermissionError(c, err)
		return 0, 0, false
	}
	return titleID, reviewID, true
}
