package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/averyhale/meadowcart-backend/pkg/auth"
	"github.com/averyhale/meadowcart-backend/pkg/auth/session"
	"github.com/averyhale/meadowcart-backend/pkg/config"
	"github.com/averyhale/meadowcart-backend/pkg/db/models"
	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid email or password"

// Service exposes admin authentication operations.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the minted access token.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	Admin       AdminDTO `json:"admin"`
}

// AdminDTO is the admin payload returned after login.
type AdminDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type adminLoader interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

type sessionStore interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	admins   adminLoader
	sessions sessionStore
	jwtCfg   config.JWTConfig
}

// NewService constructs the admin auth service.
func NewService(admins adminLoader, sessions sessionStore, jwtCfg config.JWTConfig) (Service, error) {
	if admins == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &service{admins: admins, sessions: sessions, jwtCfg: jwtCfg}, nil
}

// Login verifies the credentials and mints an access token backed by a
// revocable session.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	admin, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		AdminID: admin.ID,
		Email:   admin.Email,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.sessions.Create(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store session")
	}

	return &LoginResponse{
		AccessToken: accessToken,
		Admin:       AdminDTO{ID: admin.ID, Email: admin.Email},
	}, nil
}

// Logout revokes the session behind the token, after which the token no
// longer authenticates.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.AdminUser, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	admin, err := s.admins.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}

	valid, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return admin, nil
}
