package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"proposaldesk-backend/internal/auth"
	"proposaldesk-backend/internal/config"
	"proposaldesk-backend/internal/credstore"
	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/store"

	"github.com/google/uuid"
)

// Custom errors for auth service
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrHashingPassword    = errors.New("failed to hash password")
	ErrCreatingToken      = errors.New("failed to create access token")
	ErrGoogleSignIn       = errors.New("google sign-in failed")
	ErrValidation         = errors.New("input validation failed")
)

const minPasswordLength = 8

// AuthService authenticates users and assigns their role. The support
// role is decided here, once, against the configured support email;
// the resulting Identity carries the role everywhere else.
type AuthService struct {
	store    store.Store
	creds    *credstore.Store
	verifier auth.GoogleTokenVerifier
	cfg      *config.Config
}

func NewAuthService(s store.Store, creds *credstore.Store, verifier auth.GoogleTokenVerifier, cfg *config.Config) *AuthService {
	return &AuthService{
		store:    s,
		creds:    creds,
		verifier: verifier,
		cfg:      cfg,
	}
}

// roleFor classifies an email at sign-in time. Nothing downstream is
// allowed to repeat this comparison.
func (s *AuthService) roleFor(email string) models.Role {
	if strings.EqualFold(email, s.cfg.SupportEmail) {
		return models.RoleSupport
	}
	return models.RoleClient
}

// Signup creates a new user account and signs it in.
func (s *AuthService) Signup(ctx context.Context, email, password string) (string, models.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", models.Identity{}, fmt.Errorf("%w: email and password cannot be empty", ErrValidation)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", models.Identity{}, ErrWeakPassword
	}

	// Check if user already exists
	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return "", models.Identity{}, ErrUserAlreadyExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Error checking user existence for %s: %v", email, err)
		return "", models.Identity{}, fmt.Errorf("failed to check user existence: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("Error hashing password for %s: %v", email, err)
		return "", models.Identity{}, ErrHashingPassword
	}

	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           s.roleFor(email),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		log.Printf("Error creating user for %s: %v", email, err)
		return "", models.Identity{}, fmt.Errorf("creating user failed: %w", err)
	}

	log.Printf("Successfully signed up user %s (ID: %s, Role: %s)", email, user.ID, user.Role)
	return s.issue(models.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
}

// Login verifies user credentials and returns an access token and identity.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", models.Identity{}, ErrInvalidCredentials // Basic check before hitting DB
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", models.Identity{}, ErrInvalidCredentials // Don't reveal if user exists or password is wrong
		}
		log.Printf("Error retrieving user %s during login: %v", email, err)
		return "", models.Identity{}, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.HashedPassword) {
		return "", models.Identity{}, ErrInvalidCredentials
	}

	log.Printf("Successfully logged in user %s (ID: %s, Role: %s)", email, user.ID, user.Role)
	return s.issue(models.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
}

// GoogleLogin verifies a Google ID token, provisioning the account on
// first sign-in, and returns an access token and identity.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (string, models.Identity, error) {
	if s.verifier == nil {
		return "", models.Identity{}, fmt.Errorf("%w: google sign-in is not configured", ErrGoogleSignIn)
	}
	if strings.TrimSpace(idToken) == "" {
		return "", models.Identity{}, fmt.Errorf("%w: id_token cannot be empty", ErrValidation)
	}

	email, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Printf("Google token verification failed: %v", err)
		return "", models.Identity{}, fmt.Errorf("%w: %v", ErrGoogleSignIn, err)
	}
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// First Google sign-in: provision an account with no password.
		user = &models.User{
			ID:    uuid.New(),
			Email: email,
			Role:  s.roleFor(email),
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			log.Printf("Error provisioning Google user %s: %v", email, err)
			return "", models.Identity{}, fmt.Errorf("creating user failed: %w", err)
		}
		log.Printf("Provisioned Google user %s (ID: %s)", email, user.ID)
	} else if err != nil {
		log.Printf("Error retrieving user %s during Google login: %v", email, err)
		return "", models.Identity{}, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return s.issue(models.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
}

// Logout clears the cached identity. The access token itself simply
// expires; there is no revocation list.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.creds.Clear(userID); err != nil {
		log.Printf("WARN: Failed to clear cached identity for %s: %v", userID, err)
		return fmt.Errorf("failed to clear cached identity: %w", err)
	}
	log.Printf("Cleared cached identity for user %s", userID)
	return nil
}

// CachedIdentity re-derives an identity from the credential store
// without touching the database.
func (s *AuthService) CachedIdentity(userID uuid.UUID) (models.Identity, error) {
	return s.creds.Load(userID)
}

// issue mints the access token and records the identity in the
// credential store. A cache write failure is logged but does not block
// sign-in; the cache is an optimization, the token is the contract.
func (s *AuthService) issue(identity models.Identity) (string, models.Identity, error) {
	token, err := auth.NewAccessToken(identity, s.cfg.JWTSecret, s.cfg.TokenExpiration)
	if err != nil {
		log.Printf("Error generating JWT for user %s (ID: %s): %v", identity.Email, identity.UserID, err)
		return "", models.Identity{}, ErrCreatingToken
	}

	if err := s.creds.Save(identity); err != nil {
		log.Printf("WARN: Failed to cache identity for %s: %v", identity.UserID, err)
	}

	return token, identity, nil
}
