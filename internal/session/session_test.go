package session

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCodec(t *testing.T) (*Codec, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c, err := NewCodec("test-secret", WithClock(clk.Now))
	require.NoError(t, err)
	return c, clk
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	c, clk := newTestCodec(t)

	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		token, issued, err := c.Issue("user-1", role, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, clk.Now().Add(time.Hour), issued.ExpiresAt)

		info, err := c.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", info.UserID)
		assert.Equal(t, role, info.Role)
		assert.True(t, info.ExpiresAt.Equal(issued.ExpiresAt))
	}
}

func TestVerifyExpiry(t *testing.T) {
	t.Parallel()
	c, clk := newTestCodec(t)

	token, _, err := c.Issue("user-1", models.RoleUser, DefaultTTL)
	require.NoError(t, err)

	clk.Advance(DefaultTTL - time.Second)
	_, err = c.Verify(token)
	require.NoError(t, err)

	clk.Advance(time.Second)
	_, err = c.Verify(token)
	require.NoError(t, err, "a token is valid up to and including its expiry instant")

	clk.Advance(time.Second)
	_, err = c.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSession)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()
	c, _ := newTestCodec(t)

	token, _, err := c.Issue("user-1", models.RoleUser, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Swap in a payload claiming admin, keeping the original signature.
	forged, _, err := c.Issue("user-1", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	other, err := NewCodec("another-secret")
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"payload swapped": tampered,
		"garbage":         "not-a-token",
		"empty":           "",
		"truncated":       parts[0] + "." + parts[1],
	} {
		_, err := c.Verify(tok)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSession, name)
	}

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSession, "wrong secret")
}

func TestVerifyRejectsUnsignedAndUnknownRole(t *testing.T) {
	t.Parallel()
	c, clk := newTestCodec(t)

	exp := jwt.NewNumericDate(clk.Now().Add(time.Hour))
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		UserID:           "user-1",
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Verify(unsigned)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSession)

	superuser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:           "user-1",
		Role:             "superuser",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = c.Verify(superuser)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSession)
}

func TestIssueValidatesInput(t *testing.T) {
	t.Parallel()
	c, _ := newTestCodec(t)

	_, _, err := c.Issue("", models.RoleUser, time.Hour)
	assert.Error(t, err)
	_, _, err = c.Issue("u", models.Role("root"), time.Hour)
	assert.Error(t, err)
	_, _, err = c.Issue("u", models.RoleUser, 0)
	assert.Error(t, err)

	_, err = NewCodec("")
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", TokenFromRequest(req))

	req.AddCookie(NewCookie("from-cookie", time.Now().Add(time.Hour), false))
	assert.Equal(t, "from-cookie", TokenFromRequest(req))

	c := NewCookie("tok", time.Now(), true)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
}
