package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pbp/bookorama/internal/domain/models"
)

// SessionCookie is the primary token carrier; a Bearer Authorization header
// is accepted as a fallback for non-browser clients.
const SessionCookie = "session_token"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Email  string
	Role   string
}

// Sessions signs and validates session tokens. It is the only component that
// ever inspects a raw token; everything downstream works with models.Identity.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *Sessions) Issue(id models.Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		},
		UserID: id.UID,
		Email:  id.Email,
		Role:   id.Role,
	})
	return token.SignedString(s.secret)
}

// Authorize resolves a token into an Identity. With no roles given any
// authenticated user passes; otherwise the identity's role must match one of
// them. A missing, malformed or expired token is ErrUnauthenticated; a valid
// token with the wrong role is ErrForbidden.
func (s *Sessions) Authorize(tokenStr string, roles ...string) (models.Identity, error) {
	if tokenStr == "" {
		return models.Identity{}, ErrUnauthenticated
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Identity{}, ErrUnauthenticated
	}
	id := models.Identity{
		UID:   claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}
	if len(roles) == 0 {
		return id, nil
	}
	for _, role := range roles {
		if id.Role == role {
			return id, nil
		}
	}
	return models.Identity{}, ErrForbidden
}
