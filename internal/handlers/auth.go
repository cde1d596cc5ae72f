package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/anonto42/vortex/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth          *services.AuthService
	users         *services.UserService
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService, users *services.UserService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, secureCookies: secureCookies}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.Signin)
	g.POST("/signout", h.Signout)
	g.GET("/me", h.Me)
	g.POST("/firebase", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusCreated, res)
}

func (h *AuthHandler) Signin(c echo.Context) error {
	var req models.SigninRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Signin(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusOK, res)
}

// Signout expires the session cookie. The token itself stays valid until
// it expires.
func (h *AuthHandler) Signout(c echo.Context) error {
	c.SetCookie(session.ClearCookie(h.secureCookies))
	return respond(c, http.StatusOK, echo.Map{"signed_out": true})
}

// Me returns the caller's profile, or null for anonymous callers.
func (h *AuthHandler) Me(c echo.Context) error {
	info := middleware.SessionFrom(c)
	if info == nil {
		return respond(c, http.StatusOK, echo.Map{"user": nil})
	}
	user, err := h.users.GetByID(c.Request().Context(), info.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return respond(c, http.StatusOK, echo.Map{"user": nil})
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}

// FirebaseLogin exchanges a Firebase ID token for a session.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if !h.auth.FirebaseEnabled() {
		return apperrors.NotFound("firebase sign-in")
	}
	var req models.FirebaseLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.auth.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusOK, res)
}

func (h *AuthHandler) signedIn(c echo.Context, status int, res *services.AuthResult) error {
	c.SetCookie(session.NewCookie(res.Token, res.Session.ExpiresAt, h.secureCookies))
	return respond(c, status, echo.Map{
		"user":       res.User,
		"token":      res.Token,
		"expires_at": res.Session.ExpiresAt,
	})
}
