package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"inkwell/models"
	"inkwell/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityProvider issues and validates credentials. AuthService validates
// request input before delegating here.
type IdentityProvider interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	GetUser(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, oldPassword, newPassword string) (*models.User, error)
}

// GormIdentityProvider keeps accounts in the identities table, profiles in
// users, and hands out JWT access tokens.
type GormIdentityProvider struct {
	db     *gorm.DB
	tokens *utils.TokenIssuer
}

func NewGormIdentityProvider(db *gorm.DB, tokens *utils.TokenIssuer) *GormIdentityProvider {
	return &GormIdentityProvider{db: db, tokens: tokens}
}

// Register creates the account and then the profile. A failed profile insert
// does not undo the account: the caller gets the account data and login
// synthesizes the profile later.
func (p *GormIdentityProvider) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	identity := &models.Identity{
		ID:    uuid.NewString(),
		Email: req.Email,
	}
	if err := identity.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", ErrUpstream, err)
	}

	if err := p.db.WithContext(ctx).Create(identity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user already registered", ErrValidation)
		}
		return nil, fmt.Errorf("%w: create identity: %v", ErrUpstream, err)
	}

	user := &models.User{
		ID:       identity.ID,
		Email:    req.Email,
		Username: req.Username,
		Name:     req.Name,
		Role:     models.RoleUser,
	}
	if err := p.db.WithContext(ctx).Create(user).Error; err != nil {
		log.Printf("Profile insert failed for identity %s, continuing with account data: %v", identity.ID, err)
	}
	return user, nil
}

func (p *GormIdentityProvider) Login(ctx context.Context, email, password string) (*models.Session, error) {
	identity, err := p.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, _, err := p.tokens.Generate(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", ErrUpstream, err)
	}

	return &models.Session{
		AccessToken: token,
		User:        p.profile(ctx, identity.ID, identity.Email),
	}, nil
}

func (p *GormIdentityProvider) GetUser(ctx context.Context, token string) (*models.User, error) {
	claims, err := p.validate(ctx, token)
	if err != nil {
		return nil, err
	}
	return p.profile(ctx, claims.Subject, claims.Email), nil
}

// Logout revokes the token until its natural expiry and prunes revocations
// that have expired since.
func (p *GormIdentityProvider) Logout(ctx context.Context, token string) error {
	claims, err := p.validate(ctx, token)
	if err != nil {
		return err
	}

	revoked := &models.RevokedToken{JTI: claims.ID, ExpiresAt: claims.ExpiresAt.Time}
	if err := p.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(revoked).Error; err != nil {
		return fmt.Errorf("%w: revoke token: %v", ErrUpstream, err)
	}

	if err := p.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{}).Error; err != nil {
		log.Printf("Pruning revoked tokens failed: %v", err)
	}
	return nil
}

func (p *GormIdentityProvider) ResetPassword(ctx context.Context, token, oldPassword, newPassword string) (*models.User, error) {
	claims, err := p.validate(ctx, token)
	if err != nil {
		return nil, err
	}

	identity, err := p.authenticate(ctx, claims.Email, oldPassword)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, fmt.Errorf("%w: invalid old password", ErrValidation)
		}
		return nil, err
	}
	if identity.ID != claims.Subject {
		return nil, fmt.Errorf("%w: token does not match account", ErrUnauthorized)
	}

	if err := identity.SetPassword(newPassword); err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", ErrUpstream, err)
	}
	if err := p.db.WithContext(ctx).Model(identity).Update("password_hash", identity.PasswordHash).Error; err != nil {
		return nil, fmt.Errorf("%w: update password: %v", ErrUpstream, err)
	}

	return p.profile(ctx, identity.ID, identity.Email), nil
}

func (p *GormIdentityProvider) authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	var identity models.Identity
	err := p.db.WithContext(ctx).Where("email = ?", email).Take(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid login credentials", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find identity: %v", ErrUpstream, err)
	}
	if !identity.CheckPassword(password) {
		return nil, fmt.Errorf("%w: invalid login credentials", ErrValidation)
	}
	return &identity, nil
}

func (p *GormIdentityProvider) validate(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := p.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	var revoked int64
	if err := p.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", claims.ID).Count(&revoked).Error; err != nil {
		return nil, fmt.Errorf("%w: check revocation: %v", ErrUpstream, err)
	}
	if revoked > 0 {
		return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}
	return claims, nil
}

// profile loads the user row, or builds a minimal one from the email when
// the row is missing.
func (p *GormIdentityProvider) profile(ctx context.Context, id, email string) *models.User {
	var user models.User
	err := p.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err == nil {
		return &user
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Loading profile %s failed, using basic info: %v", id, err)
	}

	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	return &models.User{
		ID:       id,
		Email:    email,
		Username: local,
		Name:     local,
		Role:     models.RoleUser,
	}
}

const (
	MockAdminToken = "admin-token"
	MockUserToken  = "user-token"
	MockPassword   = "password123"
)

type mockAccount struct {
	token string
	user  models.User
}

// MockIdentityProvider knows two fixed accounts and their fixed tokens.
type MockIdentityProvider struct {
	accounts map[string]mockAccount
	now      func() time.Time
}

func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		accounts: map[string]mockAccount{
			"admin@example.com": {
				token: MockAdminToken,
				user: models.User{
					ID:       "1",
					Email:    "admin@example.com",
					Username: "admin",
					Name:     "Admin User",
					Role:     models.RoleAdmin,
				},
			},
			"user@example.com": {
				token: MockUserToken,
				user: models.User{
					ID:       "2",
					Email:    "user@example.com",
					Username: "user",
					Name:     "Regular User",
					Role:     models.RoleUser,
				},
			},
		},
		now: time.Now,
	}
}

func (p *MockIdentityProvider) Register(_ context.Context, req *models.RegisterRequest) (*models.User, error) {
	return &models.User{
		ID:       strconv.FormatInt(p.now().UnixMilli(), 10),
		Email:    req.Email,
		Username: req.Username,
		Name:     req.Name,
		Role:     models.RoleUser,
	}, nil
}

func (p *MockIdentityProvider) Login(_ context.Context, email, password string) (*models.Session, error) {
	account, ok := p.accounts[email]
	if !ok || password != MockPassword {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	user := account.user
	return &models.Session{AccessToken: account.token, User: &user}, nil
}

func (p *MockIdentityProvider) GetUser(_ context.Context, token string) (*models.User, error) {
	for _, account := range p.accounts {
		if account.token == token {
			user := account.user
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
}

func (p *MockIdentityProvider) Logout(ctx context.Context, token string) error {
	_, err := p.GetUser(ctx, token)
	return err
}

func (p *MockIdentityProvider) ResetPassword(ctx context.Context, token, oldPassword, _ string) (*models.User, error) {
	user, err := p.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if oldPassword != MockPassword {
		return nil, fmt.Errorf("%w: invalid old password", ErrValidation)
	}
	return user, nil
}
