package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"driftchat/config"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Authenticate(t *testing.T) {
	auth := NewAuthService(testConfig())
	userID := uuid.New()

	token, err := auth.IssueAccessToken(userID, time.Minute)
	require.NoError(t, err)

	got, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	subOnly := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := subOnly.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	got, err = auth.Authenticate(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestAuthService_Rejects(t *testing.T) {
	auth := NewAuthService(testConfig())
	other := NewAuthService(&config.Config{JWTSecret: "other-secret"})

	expired, err := auth.IssueAccessToken(uuid.New(), -time.Minute)
	require.NoError(t, err)
	foreign, err := other.IssueAccessToken(uuid.New(), time.Minute)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":   "",
		"garbage": "not-a-token",
		"expired": expired,
		"foreign": foreign,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Authenticate(token)
			assert.ErrorIs(t, err, driftchat_errors.ErrUnauthorized)
		})
	}
}

func TestUserContext(t *testing.T) {
	id := uuid.New()
	ctx := WithUserContext(context.Background(), id)
	got, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestHTTPStatusAndCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: x", driftchat_errors.ErrValidation), 400, CodeValidation},
		{driftchat_errors.ErrUnauthorized, 401, CodeUnauthorized},
		{driftchat_errors.ErrForbidden, 403, CodeForbidden},
		{driftchat_errors.ErrNotFound, 404, CodeNotFound},
		{driftchat_errors.ErrNoMatchAvailable, 404, CodeNoMatchAvailable},
		{driftchat_errors.ErrConflict, 409, CodeConflict},
		{driftchat_errors.ErrRateLimited, 429, CodeRateLimited},
		{errors.New("boom"), 500, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}
	assert.Equal(t, "internal server error", ErrorMessage(errors.New("db down")))
}
