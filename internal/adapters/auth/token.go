package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventmanager/internal/domain"
)

// ErrInvalidToken is returned by Verify for any unusable bearer token.
var ErrInvalidToken = errors.New("invalid or expired token")

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string        `json:"email"`
	Roles []domain.Role `json:"roles"`
}

// JWTAuthority issues and verifies HS256 bearer tokens.
type JWTAuthority struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTAuthority returns a JWTAuthority signing with secret; issued tokens expire after expiry.
func NewJWTAuthority(secret string, expiry time.Duration) *JWTAuthority {
	return &JWTAuthority{secret: []byte(secret), expiry: expiry, now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*JWTAuthority)(nil)
	_ domain.TokenVerifier = (*JWTAuthority)(nil)
)

// Issue signs a token for the user. Roles are informational: authorization
// always reloads the caller's current roles from the store.
func (a *JWTAuthority) Issue(userID, email string, roles []domain.Role) (string, error) {
	now := a.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
		Email: email,
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates a token and returns its subject.
func (a *JWTAuthority) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
