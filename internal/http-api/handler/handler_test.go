package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"
	"yamdb/internal/http-api/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	authorUser    = &models.User{ID: "author", Username: "author", Role: models.RoleUser}
	strangerUser  = &models.User{ID: "stranger", Username: "stranger", Role: models.RoleUser}
	moderatorUser = &models.User{ID: "mod", Username: "mod", Role: models.RoleModerator}
	adminUser     = &models.User{ID: "admin", Username: "admin", Role: models.RoleAdmin}
)

type testEnv struct {
	router   http.Handler
	auth     *MockAuthService
	users    *MockUserService
	titles   *MockTitleService
	reviews  *MockReviewService
	comments *MockCommentService
}

func setupRouter() *testEnv {
	env := &testEnv{
		auth:     new(MockAuthService),
		users:    new(MockUserService),
		titles:   new(MockTitleService),
		reviews:  new(MockReviewService),
		comments: new(MockCommentService),
	}

	engine := NewRouter(RouterConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, Services{
		Auth:     env.auth,
		Users:    env.users,
		Titles:   env.titles,
		Reviews:  env.reviews,
		Comments: env.comments,
		UserLoader: userTable{
			authorUser.ID:    authorUser,
			strangerUser.ID:  strangerUser,
			moderatorUser.ID: moderatorUser,
			adminUser.ID:     adminUser,
		},
	})
	env.router = StripTrailingSlash(engine)
	return env
}

func (e *testEnv) do(method, path string, user *models.User, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer token-"+user.ID)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func authoredReview() *dto.ReviewResponse {
	return &dto.ReviewResponse{ID: 5, Text: "good", Author: "author", Score: 8, AuthorID: authorUser.ID}
}

func TestReview_PutNotAllowed(t *testing.T) {
	env := setupRouter()

	for _, user := range []*models.User{nil, authorUser, moderatorUser, adminUser} {
		w := env.do(http.MethodPut, "/api/v1/titles/1/reviews/5/", user, map[string]any{"text": "x", "score": 5})
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "method PUT is not allowed", decode(t, w)["error"])
	}
	env.reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReview_PatchPermissions(t *testing.T) {
	env := setupRouter()
	score := 9
	patch := dto.UpdateReviewDTO{Score: &score}

	env.reviews.On("Get", mock.Anything, int64(1), int64(5)).Return(authoredReview(), nil)
	env.reviews.On("Update", mock.Anything, int64(1), int64(5), patch).Return(authoredReview(), nil)

	w := env.do(http.MethodPatch, "/api/v1/titles/1/reviews/5/", strangerUser, map[string]any{"score": 9})
	assert.Equal(t, http.StatusForbidden, w.Code)
	env.reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	w = env.do(http.MethodPatch, "/api/v1/titles/1/reviews/5/", nil, map[string]any{"score": 9})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, user := range []*models.User{authorUser, moderatorUser, adminUser} {
		w = env.do(http.MethodPatch, "/api/v1/titles/1/reviews/5/", user, map[string]any{"score": 9})
		assert.Equal(t, http.StatusOK, w.Code, user.Username)
	}
	env.reviews.AssertNumberOfCalls(t, "Update", 3)
}

func TestReview_DeleteByStranger(t *testing.T) {
	env := setupRouter()
	env.reviews.On("Get", mock.Anything, int64(1), int64(5)).Return(authoredReview(), nil)
	env.reviews.On("Delete", mock.Anything, int64(1), int64(5)).Return(nil)

	w := env.do(http.MethodDelete, "/api/v1/titles/1/reviews/5", strangerUser, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/titles/1/reviews/5", moderatorUser, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	env.reviews.AssertNumberOfCalls(t, "Delete", 1)
}

func TestReview_OwnershipRecheckedInService(t *testing.T) {
	env := setupRouter()
	score := 9
	env.reviews.On("Get", mock.Anything, int64(1), int64(5)).Return(authoredReview(), nil)
	env.reviews.On("Update", mock.Anything, int64(1), int64(5), dto.UpdateReviewDTO{Score: &score}).
		Return(authoredReview(), nil).Once()

	w := env.do(http.MethodPatch, "/api/v1/titles/1/reviews/5/", authorUser, map[string]any{"score": 9})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.reviews.authorize)
	assert.NoError(t, env.reviews.authorize(&models.Review{AuthorID: authorUser.ID}))
	assert.ErrorIs(t, env.reviews.authorize(&models.Review{AuthorID: strangerUser.ID}), permission.ErrPermissionDenied)

	// the row changed hands between the pre-check and the transaction
	env.reviews.On("Delete", mock.Anything, int64(1), int64(5)).Return(permission.ErrPermissionDenied).Once()
	env.reviews.On("Delete", mock.Anything, int64(1), int64(5)).Return(nil).Once()
	w = env.do(http.MethodDelete, "/api/v1/titles/1/reviews/5/", authorUser, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/titles/1/reviews/5/", moderatorUser, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, env.reviews.authorize(&models.Review{AuthorID: strangerUser.ID}))
}

func TestReview_Create(t *testing.T) {
	env := setupRouter()
	req := dto.CreateReviewDTO{Text: "great & fun", Score: intPtr(10)}
	env.reviews.On("Create", mock.Anything, int64(1), mock.MatchedBy(func(u *models.User) bool {
		return u.ID == authorUser.ID
	}), req).Return(&dto.ReviewResponse{ID: 9, Text: req.Text, Author: "author", Score: 10}, nil)

	w := env.do(http.MethodPost, "/api/v1/titles/1/reviews/", nil, map[string]any{"text": "x", "score": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/v1/titles/1/reviews/", authorUser, map[string]any{"text": "<b>great</b> & fun", "score": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "author", decode(t, w)["author"])
	assert.NotContains(t, w.Body.String(), "author_id")
	env.reviews.AssertExpectations(t)
}

func TestReview_CreateInvalidScore(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodPost, "/api/v1/titles/1/reviews/", authorUser, map[string]any{"text": "x", "score": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "score")
	env.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReview_CreateScoreMessages(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodPost, "/api/v1/titles/1/reviews/", authorUser, map[string]any{"text": "x", "score": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Equal(t, []any{"must be greater than or equal to 1"}, fields["score"])

	w = env.do(http.MethodPost, "/api/v1/titles/1/reviews/", authorUser, map[string]any{"text": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields = decode(t, w)["fields"].(map[string]any)
	assert.Equal(t, []any{"this field is required"}, fields["score"])
	env.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReview_CreateDuplicate(t *testing.T) {
	env := setupRouter()
	env.reviews.On("Create", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return(nil, &service.ValidationError{Fields: map[string][]string{"detail": {"you have already reviewed this title"}}})

	w := env.do(http.MethodPost, "/api/v1/titles/1/reviews/", authorUser, map[string]any{"text": "x", "score": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "detail")
}

func TestReview_ListAndNotFound(t *testing.T) {
	env := setupRouter()
	env.reviews.On("List", mock.Anything, int64(1), repository.Pagination{Page: 1, PageSize: 20}).
		Return(dto.NewPage([]dto.ReviewResponse{*authoredReview()}, 1, 1, 20), nil)
	env.reviews.On("Get", mock.Anything, int64(1), int64(77)).
		Return(nil, fmt.Errorf("review %w", service.ErrNotFound))

	w := env.do(http.MethodGet, "/api/v1/titles/1/reviews/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["total"])
	assert.Len(t, body["data"], 1)

	w = env.do(http.MethodGet, "/api/v1/titles/1/reviews/77/", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "review not found", decode(t, w)["error"])

	w = env.do(http.MethodGet, "/api/v1/titles/abc/reviews/", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	env := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/titles/1/reviews/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// token for an account that no longer exists
	w = env.do(http.MethodGet, "/api/v1/titles/1/reviews/", &models.User{ID: "ghost"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestComment_PutAndPermissions(t *testing.T) {
	env := setupRouter()
	comment := &dto.CommentResponse{ID: 3, Text: "hi", Author: "author", AuthorID: authorUser.ID}
	env.comments.On("Get", mock.Anything, int64(1), int64(5), int64(3)).Return(comment, nil)
	env.comments.On("Delete", mock.Anything, int64(1), int64(5), int64(3)).Return(nil)

	w := env.do(http.MethodPut, "/api/v1/titles/1/reviews/5/comments/3/", adminUser, map[string]any{"text": "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/titles/1/reviews/5/comments/3/", strangerUser, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/titles/1/reviews/5/comments/3/", authorUser, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, env.comments.authorize)
	assert.ErrorIs(t, env.comments.authorize(&models.Comment{AuthorID: strangerUser.ID}), permission.ErrPermissionDenied)
}

func TestSignup(t *testing.T) {
	env := setupRouter()
	req := dto.SignupRequest{Username: "reader", Email: "reader@example.com"}
	env.auth.On("Signup", mock.Anything, req).Return(&dto.SignupResponse{Username: "reader", Email: "reader@example.com"}, nil)

	w := env.do(http.MethodPost, "/api/v1/auth/signup/", nil, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reader", decode(t, w)["username"])

	w = env.do(http.MethodPost, "/api/v1/auth/signup/", nil, map[string]any{"username": "me", "email": "me@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "username")

	w = env.do(http.MethodPost, "/api/v1/auth/signup/", nil, map[string]any{"username": "reader"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "email")

	env.auth.AssertNumberOfCalls(t, "Signup", 1)
}

func TestToken(t *testing.T) {
	env := setupRouter()
	good := dto.TokenRequest{Username: "reader", ConfirmationCode: "abc"}
	bad := dto.TokenRequest{Username: "reader", ConfirmationCode: "xyz"}
	ghost := dto.TokenRequest{Username: "ghost", ConfirmationCode: "abc"}

	env.auth.On("Token", mock.Anything, good).Return(&dto.TokenResponse{Token: "jwt"}, nil)
	env.auth.On("Token", mock.Anything, bad).
		Return(nil, &service.ValidationError{Fields: map[string][]string{"confirmation_code": {"invalid confirmation code"}}})
	env.auth.On("Token", mock.Anything, ghost).Return(nil, fmt.Errorf("user %w", service.ErrNotFound))

	w := env.do(http.MethodPost, "/api/v1/auth/token/", nil, good)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "jwt", decode(t, w)["token"])

	w = env.do(http.MethodPost, "/api/v1/auth/token/", nil, bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "confirmation_code")

	w = env.do(http.MethodPost, "/api/v1/auth/token/", nil, ghost)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsers_AdminOnly(t *testing.T) {
	env := setupRouter()
	env.users.On("List", mock.Anything, "rea", repository.Pagination{Page: 1, PageSize: 20}).
		Return(dto.NewPage([]dto.UserResponse{}, 0, 1, 20), nil)

	w := env.do(http.MethodGet, "/api/v1/users/?search=rea", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/v1/users/?search=rea", moderatorUser, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/v1/users/?search=rea", adminUser, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUsers_Me(t *testing.T) {
	env := setupRouter()
	role := "admin"
	patch := dto.UpdateUserRequest{Role: &role}
	env.users.On("Update", mock.Anything, "stranger", patch, false).
		Return(dto.FromModelToUserResponse(strangerUser), nil)

	w := env.do(http.MethodGet, "/api/v1/users/me/", strangerUser, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stranger", decode(t, w)["username"])

	w = env.do(http.MethodPatch, "/api/v1/users/me/", strangerUser, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user", decode(t, w)["role"])

	w = env.do(http.MethodGet, "/api/v1/users/me/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategories_SingleNotAllowed(t *testing.T) {
	env := setupRouter()

	w := env.do(http.MethodGet, "/api/v1/categories/books/", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = env.do(http.MethodPatch, "/api/v1/genres/drama/", adminUser, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = env.do(http.MethodPost, "/api/v1/categories/", strangerUser, map[string]any{"name": "Books", "slug": "books"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealth(t *testing.T) {
	env := setupRouter()
	w := env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTitles_ListFilters(t *testing.T) {
	env := setupRouter()
	year := 1998
	page := dto.NewPage([]dto.TitleResponse{{ID: 1, Name: "Шоу Трумана", Year: 1998}}, 1, 1, dto.DefaultPageSize)

	env.titles.On("List", mock.Anything,
		repository.TitleFilter{Category: "movie", Genre: "drama", Year: &year, Name: "Trum"},
		repository.Pagination{Page: 1, PageSize: dto.DefaultPageSize},
	).Return(page, nil).Once()

	w := env.do(http.MethodGet, "/api/v1/titles/?category=movie&genre=drama&year=1998&name=Trum", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.titles.AssertExpectations(t)

	// an unparsable year does not reach the filter
	env.titles.On("List", mock.Anything, repository.TitleFilter{}, mock.Anything).Return(page, nil).Once()
	w = env.do(http.MethodGet, "/api/v1/titles?year=soon", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.titles.AssertExpectations(t)
}

func TestTitles_WritesAreAdminOnly(t *testing.T) {
	env := setupRouter()
	body := map[string]any{"name": "Шоу Трумана", "year": 1998, "genre": []string{"drama"}, "category": "movie"}

	w := env.do(http.MethodPost, "/api/v1/titles/", nil, body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/v1/titles/", moderatorUser, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.titles.On("Create", mock.Anything, dto.CreateTitleDTO{
		Name: "Шоу Трумана", Year: 1998, Genre: []string{"drama"}, Category: strPtr("movie"),
	}).Return(&dto.TitleResponse{ID: 1, Name: "Шоу Трумана", Year: 1998}, nil).Once()

	w = env.do(http.MethodPost, "/api/v1/titles/", adminUser, body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, decode(t, w)["rating"])
	env.titles.AssertExpectations(t)
}

func TestTitles_CategoryIsOptional(t *testing.T) {
	env := setupRouter()

	env.titles.On("Create", mock.Anything, dto.CreateTitleDTO{
		Name: "Untitled", Year: 2001, Genre: []string{"drama"},
	}).Return(&dto.TitleResponse{ID: 2, Name: "Untitled", Year: 2001}, nil).Once()

	w := env.do(http.MethodPost, "/api/v1/titles/", adminUser,
		map[string]any{"name": "Untitled", "year": 2001, "genre": []string{"drama"}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, decode(t, w)["category"])

	env.titles.On("Update", mock.Anything, int64(2), dto.UpdateTitleDTO{Category: dto.Null[string]()}).
		Return(&dto.TitleResponse{ID: 2, Name: "Untitled", Year: 2001}, nil).Once()
	w = env.do(http.MethodPatch, "/api/v1/titles/2/", adminUser, map[string]any{"category": nil})
	assert.Equal(t, http.StatusOK, w.Code)

	env.titles.On("Update", mock.Anything, int64(2), dto.UpdateTitleDTO{Category: dto.Of("movie")}).
		Return(&dto.TitleResponse{ID: 2, Name: "Untitled", Year: 2001}, nil).Once()
	w = env.do(http.MethodPatch, "/api/v1/titles/2/", adminUser, map[string]any{"category": "movie"})
	assert.Equal(t, http.StatusOK, w.Code)
	env.titles.AssertExpectations(t)
}

func TestTitles_CreateValidation(t *testing.T) {
	env := setupRouter()
	body := map[string]any{"name": "Future", "year": 3000, "genre": []string{"bad slug"}, "category": "movie"}

	w := env.do(http.MethodPost, "/api/v1/titles/", adminUser, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "year")
	assert.Contains(t, fields, "genre[0]")
	env.titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitles_GetDeleteAndPut(t *testing.T) {
	env := setupRouter()

	env.titles.On("Get", mock.Anything, int64(404)).Return(nil, fmt.Errorf("title %w", service.ErrNotFound)).Once()
	w := env.do(http.MethodGet, "/api/v1/titles/404/", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/v1/titles/abc/", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.titles.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	w = env.do(http.MethodDelete, "/api/v1/titles/1/", adminUser, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodPut, "/api/v1/titles/1/", adminUser, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	env.titles.AssertExpectations(t)
}
