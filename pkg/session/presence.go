package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const presenceIssuer = "strportal"

var ErrPresenceInvalid = errors.New("presence token invalid")

// SignPresence issues the client-readable presence token. Its only payload is the user id.
func (s *Store) SignPresence(userID string, expires time.Time) (string, error) {
	if s.opts.Secret == "" {
		return "", ErrNoSecret
	}
	now := s.opts.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    presenceIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
}

// VerifyPresence checks signature, issuer and expiry and returns the user id.
func (s *Store) VerifyPresence(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(presenceIssuer),
		jwt.WithTimeFunc(s.opts.Now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrPresenceInvalid
	}
	return claims.Subject, nil
}

// ParsePresence reads the user id without verifying the signature. Client code uses it to
// tag its identity; it must not be used for any authorization decision.
func ParsePresence(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", ErrPresenceInvalid
	}
	if claims.Subject == "" {
		return "", ErrPresenceInvalid
	}
	return claims.Subject, nil
}
