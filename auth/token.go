// Package auth is the identity context: it issues bearer tokens and resolves
// them back to a user id on every authenticated request.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vidtube/apperr"
)

// MaxPasswordLen is where bcrypt truncates.
const MaxPasswordLen = 72

// Issuer signs and verifies HS256 tokens whose subject is the user id.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID and its expiry.
func (i *Issuer) Issue(userID string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, apperr.Internal("failed to generate token", err)
	}
	return s, exp, nil
}

// Resolve verifies a token and returns its subject.
func (i *Issuer) Resolve(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", apperr.Unauthorized("Invalid access token")
	}
	if claims.Subject == "" {
		return "", apperr.Unauthorized("Invalid access token")
	}
	return claims.Subject, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}
