package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/campus-records-api/internal/models"
)

type jwtClaims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer signs tokens with HMAC-SHA256.
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer constructs a JWTIssuer. The secret must not be blank.
func NewJWTIssuer(secret, issuer string, ttl time.Duration, opts ...Option) (*JWTIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	o := buildOptions(opts)
	return &JWTIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: o.now}, nil
}

// Generate signs a token with the username as subject.
func (j *JWTIssuer) Generate(user models.User) (string, time.Time, error) {
	issuedAt := j.now().UTC()
	expiresAt := issuedAt.Add(j.ttl)
	claims := &jwtClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Parse verifies the signature, issuer and expiry of token.
func (j *JWTIssuer) Parse(token string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(j.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return &Claims{Username: claims.Subject, Role: claims.Role, ExpiresAt: claims.ExpiresAt.Time}, nil
}
