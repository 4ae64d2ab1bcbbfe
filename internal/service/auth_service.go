package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const (
	maxNameLen       = 100
	maxDepartmentLen = 100
	minPasswordLen   = 6
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// TokenPair bundles the access/refresh tokens returned by auth flows.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService coordinates registration, login and token refresh flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg *config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users: deps.UserRepo,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.AccessSecret,
			cfg.Auth.RefreshSecret,
			cfg.Auth.AccessTokenTTLMinutes,
			cfg.Auth.RefreshTokenTTLMinutes,
		),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
	Phone      string
}

// Register creates a new account. Role defaults to Employee; a duplicate
// email fails with a validation error and creates no record.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *TokenPair, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" || len(name) > maxNameLen {
		return nil, nil, apperrors.NewValidationError("name is required and cannot exceed 100 characters", nil)
	}
	if !emailPattern.MatchString(email) {
		return nil, nil, apperrors.NewValidationError("a valid email address is required", nil)
	}
	if len(input.Password) < minPasswordLen {
		return nil, nil, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !domain.ValidRole(role) {
		return nil, nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	department := strings.TrimSpace(input.Department)
	if len(department) > maxDepartmentLen {
		return nil, nil, apperrors.NewValidationError("department name cannot exceed 100 characters", nil)
	}
	phone := strings.TrimSpace(input.Phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		return nil, nil, apperrors.NewValidationError("phone must be 10 to 15 digits", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewValidationError("user with this email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   department,
		Phone:        phone,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Login authenticates credentials. Bad credentials yield 401; an inactive
// account yields 403 even with the right password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, nil, apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, nil, apperrors.NewForbidden("account is inactive, contact an administrator")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid email or password")
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// RefreshToken exchanges a valid refresh token for a new access token.
func (s *AuthService) RefreshToken(_ context.Context, refreshToken string) (string, time.Time, error) {
	token, exp, err := s.tokenMgr.Refresh(refreshToken)
	if err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid or expired refresh token")
	}
	return token, exp, nil
}

// Logout is a stateless no-op; clients discard their tokens.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// ChangePassword verifies the current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueTokens(userID string) (*TokenPair, error) {
	access, accessExp, err := s.tokenMgr.IssueAccessToken(userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	refresh, refreshExp, err := s.tokenMgr.IssueRefreshToken(userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
