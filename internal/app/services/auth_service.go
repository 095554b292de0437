package services

import (
	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/auth"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
)

// AuthService defines the reviewer authentication operations
type AuthService interface {
	Login(username, password string) (*dto.LoginResponse, error)
}

// authServiceImpl implements the AuthService interface. The reviewer account
// comes from configuration; there is no user store behind it.
type authServiceImpl struct {
	reviewer   models.Reviewer
	jwtService *auth.JWTService
}

// NewAuthService creates a new auth service instance
func NewAuthService(reviewer models.Reviewer, jwtService *auth.JWTService) AuthService {
	return &authServiceImpl{
		reviewer:   reviewer,
		jwtService: jwtService,
	}
}

// Login checks the configured reviewer's credentials and issues an access
// token. Unknown username and wrong password return the same error.
func (s *authServiceImpl) Login(username, password string) (*dto.LoginResponse, error) {
	if s.reviewer.PasswordHash == "" {
		logger.Error().Msg("No reviewer password hash configured, login disabled")
		return nil, apperrors.ErrInvalidCredentials
	}
	if username != s.reviewer.Username || !auth.CheckPassword(s.reviewer.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(&s.reviewer)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate access token")
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		DisplayName: s.reviewer.DisplayName,
		RoleType:    string(s.reviewer.RoleType),
	}, nil
}
