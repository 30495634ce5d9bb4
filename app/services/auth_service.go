// Package services holds the business logic between controllers and
// repositories.
package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/repositories"
	"github.com/shashiranjanraj/enventory/pkg/auth"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

// LoginInput is the credentials payload for both login endpoints.
type LoginInput struct {
	Username string `json:"username" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=4,max=100"`
}

// RegisterInput is the payload for creating a new worker account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// AuthService verifies credentials and creates accounts.
type AuthService struct {
	accounts repositories.AccountRepository
}

// NewAuthService builds the service on the given repository.
func NewAuthService(accounts repositories.AccountRepository) *AuthService {
	return &AuthService{accounts: accounts}
}

// Login checks credentials against the collection for role. An unknown
// username is ErrAccountNotFound; a wrong password is ErrInvalidCredential.
func (s *AuthService) Login(ctx context.Context, role rbac.Role, in LoginInput) (*models.Account, error) {
	acc, err := s.accounts.FindByUsername(ctx, role, in.Username)
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(acc.Password, in.Password) {
		return nil, models.ErrInvalidCredential
	}

	logger.WithCtx(ctx).Info("login", "username", acc.Username, "role", string(role))
	return acc, nil
}

// Register creates an account with role. Duplicate usernames surface as
// ErrConflict.
func (s *AuthService) Register(ctx context.Context, role rbac.Role, in RegisterInput) (*models.Account, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &models.Account{
		Username: in.Username,
		Password: hash,
	}
	if err := s.accounts.Create(ctx, role, acc); err != nil {
		return nil, err
	}

	logger.WithCtx(ctx).Info("account registered", "username", acc.Username, "role", string(role))
	return acc, nil
}

// Token issues a bearer token for the account, for clients that cannot
// hold the session cookie.
func (s *AuthService) Token(acc *models.Account) (string, error) {
	return auth.GenerateToken(acc.ID.Hex(), acc.Username, string(acc.Role))
}
