package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/validation"
	"yamdb/internal/mailer"
	"yamdb/internal/metrics"
	"yamdb/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// AccessClaims are the claims of an access token.
type AccessClaims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Type     string      `json:"type"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Signup creates the account if needed and mails it a fresh confirmation code.
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error)
	// Token exchanges a confirmation code for an access token; the code is used up.
	Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
	ValidateToken(tokenString string) (*AccessClaims, error)
}

type authService struct {
	users          repository.UserRepository
	mailer         mailer.Mailer
	jwtSecret      string
	accessTokenTTL time.Duration
}

func NewAuthService(users repository.UserRepository, m mailer.Mailer, cfg *config.Config) AuthService {
	return &authService{
		users:          users,
		mailer:         m,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := validation.Username(req.Username); err != nil {
		return nil, fieldError("username", err.Error())
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		// known account asking for a new code
		if user.Email != req.Email {
			return nil, fieldError("email", "email does not match the one registered for this username")
		}
	case errors.Is(err, repository.ErrNotFound):
		if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
			return nil, conflictError("email", "email already in use")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user = &models.User{Username: req.Username, Email: req.Email, Role: models.RoleUser}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, uniqueViolation(err)
		}
	default:
		return nil, err
	}

	code := auth.NewConfirmationCode()
	hash, err := auth.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}
	user.ConfirmationCode = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: "Your YaMDb confirmation code",
		Body:    fmt.Sprintf("Hello %s,\n\nyour confirmation code is: %s\n", user.Username, code),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to send confirmation code", "username", user.Username, "error", err)
		return nil, fmt.Errorf("send confirmation code: %w", err)
	}

	metrics.Signups.Inc()
	return &dto.SignupResponse{Username: user.Username, Email: user.Email}, nil
}

func (s *authService) Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, notFound("user", err)
	}

	if err := auth.VerifyCode(user.ConfirmationCode, req.ConfirmationCode); err != nil {
		return nil, fieldError("confirmation_code", "invalid confirmation code")
	}

	user.ConfirmationCode = ""
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	metrics.TokensIssued.Inc()
	return &dto.TokenResponse{Token: token}, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Type:     accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and validates a JWT access token
func (s *authService) ValidateToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Type != accessTokenType || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
