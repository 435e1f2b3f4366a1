package handler

import (
	"net/http"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		me := middleware.Require(permission.IsAuthenticated{})
		users.GET("/me", me, h.Me)
		users.PATCH("/me", me, h.UpdateMe)
		users.DELETE("/me", methodNotAllowed)

		admin := middleware.Require(permission.AdminOnly{})
		users.GET("", admin, h.List)
		users.POST("", admin, h.Create)
		users.GET("/:username", admin, h.Get)
		users.PATCH("/:username", admin, h.Update)
		users.DELETE("/:username", admin, h.Delete)
	}
}

// List returns accounts, optionally filtered by ?search= on the username
// GET /api/v1/users/
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), c.Query("search"), pagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Create adds an account on behalf of an admin
// POST /api/v1/users/
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GET /api/v1/users/:username/
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PATCH /api/v1/users/:username/
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("username"), req, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DELETE /api/v1/users/:username/
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's own profile
// GET /api/v1/users/me/
func (h *UserHandler) Me(c *gin.Context) {
	current := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(current))
}

// UpdateMe edits the caller's own profile; only admins may change their role
// PATCH /api/v1/users/me/
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	current := middleware.CurrentUser(c)
	user, err := h.userService.Update(c.Request.Context(), current.Username, req, current.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
