package handler

import (
	"context"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"

	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks sign-up and token exchange; tokens are "token-<user id>"
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SignupResponse), args.Error(1)
}

func (m *MockAuthService) Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.AccessClaims, error) {
	const prefix = "token-"
	if len(tokenString) <= len(prefix) || tokenString[:len(prefix)] != prefix {
		return nil, service.ErrInvalidToken
	}
	return &service.AccessClaims{UserID: tokenString[len(prefix):], Type: "access"}, nil
}

// userTable is an in-memory UserLoader
type userTable map[string]*models.User

func (t userTable) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := t[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type MockReviewService struct {
	mock.Mock
	authorize service.Authorizer // last one passed to Update or Delete
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, page repository.Pagination) (*dto.Page[dto.ReviewResponse], error) {
	args := m.Called(ctx, titleID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Page[dto.ReviewResponse]), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, titleID int64, author *models.User, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, author, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, titleID, reviewID int64, req dto.UpdateReviewDTO, authorize service.Authorizer) (*dto.ReviewResponse, error) {
	m.authorize = authorize
	args := m.Called(ctx, titleID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, titleID, reviewID int64, authorize service.Authorizer) error {
	m.authorize = authorize
	args := m.Called(ctx, titleID, reviewID)
	return args.Error(0)
}

type MockCommentService struct {
	mock.Mock
	authorize service.Authorizer
}

func (m *MockCommentService) List(ctx context.Context, titleID, reviewID int64, page repository.Pagination) (*dto.Page[dto.CommentResponse], error) {
	args := m.Called(ctx, titleID, reviewID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Page[dto.CommentResponse]), args.Error(1)
}

func (m *MockCommentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	args := m.Called(ctx, titleID, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, titleID, reviewID int64, author *models.User, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	args := m.Called(ctx, titleID, reviewID, author, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO, authorize service.Authorizer) (*dto.CommentResponse, error) {
	m.authorize = authorize
	args := m.Called(ctx, titleID, reviewID, commentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, titleID, reviewID, commentID int64, authorize service.Authorizer) error {
	m.authorize = authorize
	args := m.Called(ctx, titleID, reviewID, commentID)
	return args.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, search string, page repository.Pagination) (*dto.Page[dto.UserResponse], error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Page[dto.UserResponse]), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, username string, req dto.UpdateUserRequest, allowRole bool) (*dto.UserResponse, error) {
	args := m.Called(ctx, username, req, allowRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, filter repository.TitleFilter, page repository.Pagination) (*dto.Page[dto.TitleResponse], error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Page[dto.TitleResponse]), args.Error(1)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
