package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EmailTokenClaims is the payload of an email registration token.
type EmailTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// EmailTokenService issues and verifies the signed tokens sent by email. The
// tokens are stateless: their validity lies entirely in the signature and the
// expiration claim.
type EmailTokenService interface {
	// Create signs a token for the email address, issued at now.
	Create(email string, now time.Time) (string, error)

	// Verify checks the signature and expiration against now. It fails with
	// domainerrors.ErrInvalidToken.
	Verify(token string, now time.Time) (*EmailTokenClaims, error)
}
