package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/core/common/validation"
)

// Repository is the slice of the user store authentication reads.
type Repository interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	// GetActor returns the actor view of a user plus its active flag.
	GetActor(ctx context.Context, userID int64) (*Actor, bool, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolveActor(ctx context.Context, userID int64) (*Actor, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo   Repository
	tokens TokenGenerator
	hasher *PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, tokens TokenGenerator, hasher *PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := validation.Struct(dto); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentialsByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Warn("login for unknown email")
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		s.logger.Error("failed to load credentials", "error", err)
		return AuthTokens{}, err
	}

	if !s.hasher.Verify(creds.PasswordHash, dto.Password) {
		s.logger.Warn("login with wrong password", "user_id", creds.UserID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !creds.IsActive {
		s.logger.Warn("login for inactive user", "user_id", creds.UserID)
		return AuthTokens{}, internal.ErrUserInactive
	}

	actor, err := s.ResolveActor(ctx, creds.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	s.logger.Info("user authenticated", "user_id", actor.ID, "role", actor.Role)
	return s.issue(actor)
}

// RefreshTokens validates refresh token and returns a rotated pair
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	actor, err := s.ResolveActor(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issue(actor)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// ResolveActor loads the current role and department of a user; tokens never carry them authoritatively.
func (s *Service) ResolveActor(ctx context.Context, userID int64) (*Actor, error) {
	actor, active, err := s.repo.GetActor(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		s.logger.Error("failed to load actor", "user_id", userID, "error", err)
		return nil, err
	}
	if !active {
		return nil, internal.ErrUserInactive
	}
	if !actor.Role.Valid() {
		s.logger.Error("user has unknown role", "user_id", userID, "role", actor.Role)
		return nil, internal.ErrForbidden
	}
	return actor, nil
}

func (s *Service) issue(actor *Actor) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(actor.ID, actor.Role)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(actor.ID, actor.Role)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
