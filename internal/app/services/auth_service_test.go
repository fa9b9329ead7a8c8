package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/profrate/internal/app/auth"
	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/pkg/apperrors"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.Auth.Register(ctx, auth.Anonymous, &dto.RegisterRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret", user.PasswordHash)

	_, err = env.svc.Auth.Register(ctx, auth.Anonymous, &dto.RegisterRequest{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)

	_, err = env.svc.Auth.Register(ctx, alice, &dto.RegisterRequest{Username: "bob", Password: "secret"})
	assert.ErrorIs(t, err, apperrors.ErrLoggedIn)

	got, err := env.svc.Auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "secret"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Auth.CreateUser(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NoError(t, env.svc.Auth.SetActive(ctx, "alice", false))

	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	// a wrong password never reveals the account state
	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, env.svc.Auth.SetActive(ctx, "alice", true))
	_, err = env.svc.Auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret"})
	assert.NoError(t, err)

	assert.ErrorIs(t, env.svc.Auth.SetActive(ctx, "nobody", true), apperrors.ErrUserNotFound)
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Auth.CreateUser(ctx, strings.Repeat("a", 65), "secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.svc.Auth.CreateUser(ctx, "alice", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.svc.Auth.CreateUser(ctx, "alice", strings.Repeat("p", 73))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
