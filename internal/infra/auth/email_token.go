package auth

import (
	"time"

	"etwin/config"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const defaultEmailTokenTTL = 24 * time.Hour

// emailTokenService signs email registration tokens with HS256.
type emailTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewEmailTokenService is the constructor for emailTokenService.
func NewEmailTokenService(cfg *config.Config) (service.EmailTokenService, error) {
	if cfg.SecretKey.Token == "" {
		return nil, errors.New("token secret must be provided")
	}

	ttl := defaultEmailTokenTTL
	if cfg.Auth != nil && cfg.Auth.EmailTokenTTL > 0 {
		ttl = cfg.Auth.EmailTokenTTL
	}

	return &emailTokenService{secret: []byte(cfg.SecretKey.Token), ttl: ttl}, nil
}

// Create signs a token for the email, issued at now.
func (s *emailTokenService) Create(email string, now time.Time) (string, error) {
	claims := service.EmailTokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign email token")
	}

	return signed, nil
}

// Verify checks the token against now rather than the wall clock.
func (s *emailTokenService) Verify(token string, now time.Time) (*service.EmailTokenClaims, error) {
	claims := &service.EmailTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "email token rejected")
	}
	if claims.Email == "" || claims.IssuedAt == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "email token is missing claims")
	}

	return claims, nil
}
