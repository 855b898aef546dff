package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Symmetric issues and verifies HS512-signed session tokens.
type Symmetric struct {
	config Config
}

// NewSymmetric builds a Symmetric token service. The signing key must be at
// least 64 bytes so the HMAC is keyed with a full SHA-512 block.
func NewSymmetric(config Config) (*Symmetric, error) {
	if len(config.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}

	return &Symmetric{config: config}, nil
}

// Generate creates a signed token asserting the account identity.
func (s *Symmetric) Generate(accountID, email string) (string, error) {
	now := s.config.Clock.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   accountID,
			Audience:  s.config.Audiences,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        s.config.UUID.Generate(),
		},
		AccountID: accountID,
		Email:     email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}

// Verify parses and validates the token and returns its claims.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}

		return s.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.config.Clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}

		return Claims{}, ErrInvalidToken
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
