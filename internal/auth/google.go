package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrGoogleTokenInvalid is returned when an ID token fails verification.
var ErrGoogleTokenInvalid = errors.New("google ID token verification failed")

// GoogleTokenVerifier validates Google-issued ID tokens and extracts the
// account email. It exists as an interface so the auth service can be
// tested without calling Google.
type GoogleTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (email string, err error)
}

// GoogleVerifier verifies ID tokens against Google's public keys,
// checking the audience matches our OAuth client ID.
type GoogleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier for the given OAuth client ID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// VerifyIDToken validates the token signature, expiry and audience, and
// returns the verified email claim.
func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, token string) (string, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGoogleTokenInvalid, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("%w: token has no email claim", ErrGoogleTokenInvalid)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return "", fmt.Errorf("%w: email not verified by Google", ErrGoogleTokenInvalid)
	}

	return email, nil
}
