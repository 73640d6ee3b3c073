// Package token issues and validates the bearer tokens handed out at login.
//
// Two schemes exist. The dev scheme is a reversible encoding of username and
// expiry and carries no signature, so anyone can mint one; it is only accepted
// outside production. The jwt scheme signs the same subject and expiry with
// HMAC-SHA256.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/pkg/config"
)

var (
	// ErrMalformed is returned for tokens that cannot be decoded.
	ErrMalformed = errors.New("malformed token")
	// ErrExpired is returned once the token's expiry has passed.
	ErrExpired = errors.New("token expired")
)

// Claims is what a valid token asserts about its bearer.
type Claims struct {
	Username  string
	Role      models.UserRole
	ExpiresAt time.Time
}

// Issuer generates tokens for users and validates presented tokens.
type Issuer interface {
	Generate(user models.User) (string, time.Time, error)
	Parse(token string) (*Claims, error)
}

// Validate reports whether token is well formed and unexpired.
func Validate(issuer Issuer, token string) bool {
	_, err := issuer.Parse(token)
	return err == nil
}

// Username extracts the subject of a valid token.
func Username(issuer Issuer, token string) (string, bool) {
	claims, err := issuer.Parse(token)
	if err != nil {
		return "", false
	}
	return claims.Username, true
}

// Option customises an issuer.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the issuer selected by cfg.Scheme.
func New(cfg config.TokenConfig, opts ...Option) (Issuer, error) {
	switch cfg.Scheme {
	case config.TokenSchemeDev, "":
		return NewDevIssuer(cfg.TTL, opts...), nil
	case config.TokenSchemeJWT:
		return NewJWTIssuer(cfg.Secret, cfg.Issuer, cfg.TTL, opts...)
	}
	return nil, fmt.Errorf("unknown token scheme %q", cfg.Scheme)
}
