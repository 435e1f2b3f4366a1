package service

import (
	"context"
	"errors"
	"strings"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/validation"
)

type UserService interface {
	List(ctx context.Context, search string, page repository.Pagination) (*dto.Page[dto.UserResponse], error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	// Update applies a partial update; role changes are dropped unless allowRole is set.
	Update(ctx context.Context, username string, req dto.UpdateUserRequest, allowRole bool) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, search string, page repository.Pagination) (*dto.Page[dto.UserResponse], error) {
	users, total, err := s.users.List(ctx, search, page)
	if err != nil {
		return nil, err
	}
	data := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, *dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPage(data, int(total), page.Page, page.PageSize), nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := validation.Username(req.Username); err != nil {
		return nil, fieldError("username", err.Error())
	}
	if err := s.ensureUnique(ctx, "", req.Username, req.Email); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      models.Role(req.Role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, uniqueViolation(err)
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound("user", err)
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserRequest, allowRole bool) (*dto.UserResponse, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound("user", err)
	}

	newUsername, newEmail := "", ""
	if req.Username != nil && *req.Username != user.Username {
		if err := validation.Username(*req.Username); err != nil {
			return nil, fieldError("username", err.Error())
		}
		newUsername = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		newEmail = *req.Email
	}
	if err := s.ensureUnique(ctx, user.ID, newUsername, newEmail); err != nil {
		return nil, err
	}

	if newUsername != "" {
		user.Username = newUsername
	}
	if newEmail != "" {
		user.Email = newEmail
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil && allowRole {
		role := models.Role(*req.Role)
		if !role.Valid() {
			return nil, fieldError("role", "must be one of: user moderator admin")
		}
		user.Role = role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, uniqueViolation(err)
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return notFound("user", err)
	}
	return notFound("user", s.users.Delete(ctx, user.ID))
}

// ensureUnique rejects a username or email already held by another account;
// empty values are not checked
func (s *userService) ensureUnique(ctx context.Context, selfID, username, email string) error {
	if username != "" {
		other, err := s.users.FindByUsername(ctx, username)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if other != nil && other.ID != selfID {
			return conflictError("username", "a user with that username already exists")
		}
	}
	if email != "" {
		other, err := s.users.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if other != nil && other.ID != selfID {
			return conflictError("email", "a user with that email already exists")
		}
	}
	return nil
}

// uniqueViolation maps a racing insert onto the same field errors ensureUnique reports
func uniqueViolation(err error) error {
	if !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	if strings.Contains(err.Error(), "email") {
		return conflictError("email", "a user with that email already exists")
	}
	return conflictError("username", "a user with that username already exists")
}
