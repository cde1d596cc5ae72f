// Package middleware holds the echo middleware that guards the API.
package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/ratelimit"
	"github.com/anonto42/vortex/backend/internal/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	APIPrefix   = "/api"
	AdminPrefix = "/api/admin"

	sessionContextKey = "session"
)

// SessionVerifier decodes a session token. *session.Codec satisfies it.
type SessionVerifier interface {
	Verify(token string) (session.Info, error)
}

// AccessGuard rate limits API traffic by client IP, decodes the caller's
// session and keeps non-admins out of the admin routes.
type AccessGuard struct {
	verifier SessionVerifier
	limiter  ratelimit.Limiter
	logger   *zap.Logger
}

func NewAccessGuard(verifier SessionVerifier, limiter ratelimit.Limiter, logger *zap.Logger) *AccessGuard {
	return &AccessGuard{verifier: verifier, limiter: limiter, logger: logger}
}

// Authorize applies the guard to r, keying the rate limit on the
// connection's remote address. The returned session is nil for anonymous
// callers.
func (g *AccessGuard) Authorize(r *http.Request) (*session.Info, error) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return g.authorize(r, host)
}

func (g *AccessGuard) authorize(r *http.Request, clientIP string) (*session.Info, error) {
	path := r.URL.Path

	if underPrefix(path, APIPrefix) {
		allowed, err := g.limiter.Allow(r.Context(), clientIP)
		if err != nil {
			// fail open when the limiter store is unreachable
			g.logger.Warn("rate limiter unavailable", zap.String("ip", clientIP), zap.Error(err))
		} else if !allowed {
			return nil, apperrors.ErrRateLimited
		}
	}

	var info *session.Info
	if token := session.TokenFromRequest(r); token != "" {
		decoded, err := g.verifier.Verify(token)
		if err == nil {
			info = &decoded
		} else {
			g.logger.Debug("ignoring invalid session", zap.String("path", path), zap.Error(err))
		}
	}

	if underPrefix(path, AdminPrefix) {
		if info == nil {
			return nil, apperrors.ErrUnauthorized
		}
		if !info.IsAdmin() {
			return nil, apperrors.ErrForbidden
		}
	}
	return info, nil
}

// Middleware runs Authorize for every request and stores the session, if
// any, in the echo context.
func (g *AccessGuard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			info, err := g.authorize(c.Request(), c.RealIP())
			if err != nil {
				return err
			}
			if info != nil {
				c.Set(sessionContextKey, info)
			}
			return next(c)
		}
	}
}

// SessionFrom returns the caller's session, or nil for anonymous requests.
func SessionFrom(c echo.Context) *session.Info {
	info, _ := c.Get(sessionContextKey).(*session.Info)
	return info
}

// RequireSession rejects anonymous callers.
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if SessionFrom(c) == nil {
			return apperrors.ErrUnauthorized
		}
		return next(c)
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		info := SessionFrom(c)
		if info == nil {
			return apperrors.ErrUnauthorized
		}
		if !info.IsAdmin() {
			return apperrors.ErrForbidden
		}
		return next(c)
	}
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
