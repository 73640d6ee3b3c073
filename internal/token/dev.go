package token

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/campus-records-api/internal/models"
)

const devPrefix = "dev."

// DevIssuer encodes "username:expiryMillis" as unpadded base64url behind a "dev." prefix.
type DevIssuer struct {
	ttl time.Duration
	now func() time.Time
}

// NewDevIssuer constructs a DevIssuer whose tokens live for ttl.
func NewDevIssuer(ttl time.Duration, opts ...Option) *DevIssuer {
	o := buildOptions(opts)
	return &DevIssuer{ttl: ttl, now: o.now}
}

// Generate encodes the username with an expiry of now plus the configured TTL.
func (d *DevIssuer) Generate(user models.User) (string, time.Time, error) {
	expiresAt := d.now().Add(d.ttl)
	payload := user.Username + ":" + strconv.FormatInt(expiresAt.UnixMilli(), 10)
	return devPrefix + base64.RawURLEncoding.EncodeToString([]byte(payload)), time.UnixMilli(expiresAt.UnixMilli()).UTC(), nil
}

// Parse decodes token and checks its expiry. The role is not carried by this scheme.
func (d *DevIssuer) Parse(token string) (*Claims, error) {
	if !strings.HasPrefix(token, devPrefix) {
		return nil, ErrMalformed
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, devPrefix))
	if err != nil {
		return nil, ErrMalformed
	}
	payload := string(raw)
	sep := strings.LastIndex(payload, ":")
	if sep <= 0 {
		return nil, ErrMalformed
	}
	millis, err := strconv.ParseInt(payload[sep+1:], 10, 64)
	if err != nil {
		return nil, ErrMalformed
	}
	expiresAt := time.UnixMilli(millis).UTC()
	if !d.now().Before(expiresAt) {
		return nil, ErrExpired
	}
	return &Claims{Username: payload[:sep], ExpiresAt: expiresAt}, nil
}
