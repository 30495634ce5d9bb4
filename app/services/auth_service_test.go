package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/pkg/auth"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeAccountRepo())
	ctx := context.Background()

	acc, err := svc.Register(ctx, rbac.RoleWorker, RegisterInput{Username: "ravi", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ravi", acc.Username)
	assert.Equal(t, rbac.RoleWorker, acc.Role)
	assert.NotEqual(t, "secret123", acc.Password, "password must be stored hashed")

	got, err := svc.Login(ctx, rbac.RoleWorker, LoginInput{Username: "ravi", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeAccountRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, rbac.RoleWorker, RegisterInput{Username: "ravi", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, rbac.RoleWorker, LoginInput{Username: "ravi", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeAccountRepo())

	_, err := svc.Login(context.Background(), rbac.RoleAdmin, LoginInput{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestLoginRoleCollectionsAreSeparate(t *testing.T) {
	svc := NewAuthService(newFakeAccountRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, rbac.RoleWorker, RegisterInput{Username: "ravi", Password: "secret123"})
	require.NoError(t, err)

	// Worker credentials do not open the admin door.
	_, err = svc.Login(ctx, rbac.RoleAdmin, LoginInput{Username: "ravi", Password: "secret123"})
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewAuthService(newFakeAccountRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, rbac.RoleWorker, RegisterInput{Username: "ravi", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, rbac.RoleWorker, RegisterInput{Username: "ravi", Password: "other456"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(newFakeAccountRepo())
	ctx := context.Background()

	acc, err := svc.Register(ctx, rbac.RoleAdmin, RegisterInput{Username: "meera", Password: "secret123"})
	require.NoError(t, err)

	token, err := svc.Token(acc)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID.Hex(), claims.ID)
	assert.Equal(t, "meera", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}
