package auth

import (
	"testing"
	"time"

	"etwin/config"
	domainerrors "etwin/internal/domain/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmailTokenService(t *testing.T, secret string) *emailTokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Token = secret

	svc, err := NewEmailTokenService(cfg)
	require.NoError(t, err)

	return svc.(*emailTokenService)
}

func TestEmailTokenService_RoundTrip(t *testing.T) {
	svc := newTestEmailTokenService(t, "test_token_secret")
	issuedAt := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)

	token, err := svc.Create("alice@example.com", issuedAt)
	require.NoError(t, err)

	claims, err := svc.Verify(token, issuedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.IssuedAt.Time.Equal(issuedAt))
	assert.True(t, claims.ExpiresAt.Time.Equal(issuedAt.Add(24*time.Hour)))
}

func TestEmailTokenService_Rejects(t *testing.T) {
	svc := newTestEmailTokenService(t, "test_token_secret")
	other := newTestEmailTokenService(t, "another_secret")
	issuedAt := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)

	valid, err := svc.Create("alice@example.com", issuedAt)
	require.NoError(t, err)
	foreign, err := other.Create("alice@example.com", issuedAt)
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email": "alice@example.com",
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{name: "expired after one day", token: valid, now: issuedAt.Add(24*time.Hour + time.Second)},
		{name: "foreign signature", token: foreign, now: issuedAt},
		{name: "unsigned", token: noneAlg, now: issuedAt},
		{name: "garbage", token: "not-a-token", now: issuedAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token, tt.now)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
		})
	}
}

func TestNewEmailTokenService_RequiresSecret(t *testing.T) {
	_, err := NewEmailTokenService(&config.Config{})
	assert.Error(t, err)
}
