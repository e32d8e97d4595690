package services

import (
	"context"
	"fmt"
	"strings"

	"inkwell/models"
)

// AuthService validates auth requests and delegates to the identity provider
// chosen at startup.
type AuthService struct {
	identity IdentityProvider
}

func NewAuthService(identity IdentityProvider) *AuthService {
	return &AuthService{identity: identity}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if req == nil || blank(req.Email, req.Password, req.Username, req.Name) {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	req.Email = strings.TrimSpace(req.Email)
	return s.identity.Register(ctx, req)
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	if req == nil || blank(req.Email, req.Password) {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	return s.identity.Login(ctx, strings.TrimSpace(req.Email), req.Password)
}

func (s *AuthService) GetUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token missing", ErrUnauthorized)
	}
	return s.identity.GetUser(ctx, token)
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token missing", ErrUnauthorized)
	}
	return s.identity.Logout(ctx, token)
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, req *models.ResetPasswordRequest) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token missing", ErrUnauthorized)
	}
	if req == nil || blank(req.NewPassword) {
		return nil, fmt.Errorf("%w: new password is required", ErrValidation)
	}
	if blank(req.OldPassword) {
		return nil, fmt.Errorf("%w: invalid old password", ErrValidation)
	}
	return s.identity.ResetPassword(ctx, token, req.OldPassword, req.NewPassword)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
