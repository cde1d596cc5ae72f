// Package session issues and verifies the stateless signed tokens carried in
// the session cookie. Verification needs only the server secret.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// DefaultTTL is the fixed session lifetime. Sessions are never renewed.
const DefaultTTL = 24 * time.Hour

// Info is the verified content of a session token.
type Info struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (i *Info) IsAdmin() bool { return i != nil && i.Role == models.RoleAdmin }

type claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs tokens with HMAC-SHA256.
type Codec struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Codec)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for userID valid for ttl from now.
func (c *Codec) Issue(userID string, role models.Role, ttl time.Duration) (string, Info, error) {
	if userID == "" {
		return "", Info{}, errors.New("session: empty user id")
	}
	if !role.Valid() {
		return "", Info{}, fmt.Errorf("session: unknown role %q", role)
	}
	if ttl <= 0 {
		return "", Info{}, fmt.Errorf("session: non-positive ttl %s", ttl)
	}

	now := c.now()
	// exp is carried with second precision, so truncate before handing it back.
	expires := now.Add(ttl).Truncate(time.Second)
	cl := claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", Info{}, fmt.Errorf("session: sign: %w", err)
	}
	return token, Info{UserID: userID, Role: role, ExpiresAt: expires}, nil
}

// Verify checks the signature and expiry of token. Every failure is
// reported as apperrors.ErrInvalidSession.
func (c *Codec) Verify(token string) (Info, error) {
	if token == "" {
		return Info{}, apperrors.ErrInvalidSession
	}

	cl := &claims{}
	parsed, err := jwt.ParseWithClaims(token, cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// expiry is checked below against the injected clock
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !parsed.Valid {
		return Info{}, apperrors.ErrInvalidSession
	}

	role, ok := models.ParseRole(cl.Role)
	if !ok || cl.UserID == "" || cl.ExpiresAt == nil {
		return Info{}, apperrors.ErrInvalidSession
	}
	expires := cl.ExpiresAt.Time
	if c.now().After(expires) {
		return Info{}, apperrors.ErrInvalidSession
	}
	return Info{UserID: cl.UserID, Role: role, ExpiresAt: expires}, nil
}
