package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"github.com/anonto42/vortex/backend/internal/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const usernameAttempts = 5

// IDTokenVerifier checks a third-party identity token. *auth.Client
// satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthResult is a signed-in user with a fresh session token.
type AuthResult struct {
	User    *models.User
	Token   string
	Session session.Info
}

type AuthService struct {
	users      repositories.UserRepository
	codec      *session.Codec
	ttl        time.Duration
	adminEmail string
	firebase   IDTokenVerifier
	bcryptCost int
	logger     *zap.Logger
}

type AuthOption func(*AuthService)

// WithAdminEmail grants the admin role to whoever signs up with email.
func WithAdminEmail(email string) AuthOption {
	return func(s *AuthService) { s.adminEmail = normalizeEmail(email) }
}

// WithFirebase enables sign-in with Firebase ID tokens.
func WithFirebase(v IDTokenVerifier) AuthOption {
	return func(s *AuthService) { s.firebase = v }
}

func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewAuthService(users repositories.UserRepository, codec *session.Codec, logger *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:      users,
		codec:      codec,
		ttl:        session.DefaultTTL,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FirebaseEnabled reports whether Firebase sign-in is configured.
func (s *AuthService) FirebaseEnabled() bool { return s.firebase != nil }

// Signup creates an account and signs it in. The first account on the
// platform, and any account using the configured admin email, is an admin.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperrors.New(apperrors.ErrConflict, "user already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	role, err := s.signupRole(ctx, email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.create(ctx, user, req.Username); err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Signin checks email and password. Unknown email and wrong password fail
// the same way.
func (s *AuthService) Signin(ctx context.Context, req models.SigninRequest) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrUnauthorized, "invalid credentials")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "invalid credentials")
	}
	return s.issue(user)
}

// FirebaseLogin verifies a Firebase ID token and signs in the matching
// account, creating it on first use.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.firebase == nil {
		return nil, apperrors.NotFound("firebase sign-in")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Debug("firebase token rejected", zap.Error(err))
		return nil, apperrors.ErrInvalidSession
	}

	email, _ := token.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.Validation("firebase account has no email")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return s.issue(user)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("loading user: %w", err)
	}

	name, _ := token.Claims["name"].(string)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	picture, _ := token.Claims["picture"].(string)

	role, err := s.signupRole(ctx, email)
	if err != nil {
		return nil, err
	}
	user = &models.User{Name: name, Email: email, Avatar: picture, Role: role}
	if err := s.create(ctx, user, ""); err != nil {
		return nil, err
	}
	s.logger.Info("user signed up via firebase", zap.String("user_id", user.ID), zap.String("firebase_uid", token.UID))
	return s.issue(user)
}

// EnsureAdmin creates an admin account for email when none exists. It is a
// no-op when email or password is empty.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("checking admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	admin := &models.User{Name: "Admin", Email: email, PasswordHash: string(hash), Role: models.RoleAdmin}
	if err := s.create(ctx, admin, ""); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("user_id", admin.ID))
	return nil
}

func (s *AuthService) signupRole(ctx context.Context, email string) (models.Role, error) {
	if s.adminEmail != "" && email == s.adminEmail {
		return models.RoleAdmin, nil
	}
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("counting users: %w", err)
	}
	if count == 0 {
		return models.RoleAdmin, nil
	}
	return models.RoleUser, nil
}

// create inserts user. A requested username must be free; otherwise one is
// derived from the name and retried on collision.
func (s *AuthService) create(ctx context.Context, user *models.User, requested string) error {
	if requested = strings.TrimSpace(requested); requested != "" {
		user.Username = requested
		if err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return apperrors.New(apperrors.ErrConflict, "username or email already taken")
			}
			return fmt.Errorf("creating user: %w", err)
		}
		return nil
	}

	var err error
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		user.Username = GenerateUsername(user.Name)
		if err = s.users.CreateUser(ctx, user); err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("creating user: %w", err)
		}
		if _, lookupErr := s.users.GetUserByEmail(ctx, user.Email); lookupErr == nil {
			return apperrors.New(apperrors.ErrConflict, "user already exists")
		}
		user.ID = ""
	}
	return fmt.Errorf("no free username after %d attempts: %w", usernameAttempts, err)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, info, err := s.codec.Issue(user.ID, user.Role, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}
	return &AuthResult{User: user, Token: token, Session: info}, nil
}

var nonUsername = regexp.MustCompile(`[^a-z0-9_]+`)

// GenerateUsername turns a display name into "name_with_underscores" plus a
// random number below 1000.
func GenerateUsername(name string) string {
	base := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	base = nonUsername.ReplaceAllString(base, "")
	if base == "" {
		base = "user"
	}
	if len(base) > 24 {
		base = base[:24]
	}
	return fmt.Sprintf("%s%d", base, rand.IntN(1000))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
