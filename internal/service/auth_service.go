package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

type AuthService struct {
	userRepo          *repository.UserRepository
	jwtSecret         []byte
	tokenTTL          time.Duration
	extensionTokenTTL time.Duration
}

func NewAuthService(
	userRepo *repository.UserRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	extensionTokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		jwtSecret:         []byte(jwtSecret),
		tokenTTL:          tokenTTL,
		extensionTokenTTL: extensionTokenTTL,
	}
}

type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, *apperrors.APIError) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized == "" {
		return nil, apperrors.Validation("invalid_username", "username is required")
	}
	if len(password) < 6 {
		return nil, apperrors.Validation("invalid_password", "password must be at least 6 characters")
	}

	_, err := s.userRepo.GetByUsername(ctx, normalized)
	if err == nil {
		return nil, apperrors.Conflict("username_exists", "username already registered", nil)
	}
	if err != nil && err != repository.ErrNotFound {
		return nil, apperrors.Internal("failed to query user")
	}

	passwordHashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to secure password")
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     normalized,
		PasswordHash: string(passwordHashBytes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, &user); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperrors.Conflict("username_exists", "username already registered", nil)
		}
		return nil, apperrors.Internal("failed to create user")
	}

	token, apiErr := s.issueToken(user.ID, s.tokenTTL)
	if apiErr != nil {
		return nil, apiErr
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, *apperrors.APIError) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized == "" || password == "" {
		return nil, apperrors.Validation("invalid_credentials", "username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, normalized)
	if err == repository.ErrNotFound {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to query user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	token, apiErr := s.issueToken(user.ID, s.tokenTTL)
	if apiErr != nil {
		return nil, apiErr
	}

	return &AuthResult{Token: token, User: *user}, nil
}

// IssueExtensionToken mints a long-lived bearer token the browser extension
// uses in place of the web client's session. Same signing key and claims
// shape, longer TTL.
func (s *AuthService) IssueExtensionToken(userID string) (string, *apperrors.APIError) {
	return s.issueToken(userID, s.extensionTokenTTL)
}

func (s *AuthService) ParseToken(tokenString string) (string, *apperrors.APIError) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", apperrors.Unauthorized("invalid token")
	}

	if claims.Subject == "" {
		return "", apperrors.Unauthorized("invalid token subject")
	}

	return claims.Subject, nil
}

func (s *AuthService) issueToken(userID string, ttl time.Duration) (string, *apperrors.APIError) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Internal("failed to sign token")
	}
	return signed, nil
}
