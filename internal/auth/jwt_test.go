package auth

import (
	"testing"
	"time"

	"proposaldesk-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func parseClaims(t *testing.T, token, secret string) *CustomClaims {
	t.Helper()
	claims := &CustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("ParseWithClaims: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token is not valid")
	}
	return claims
}

func TestNewAccessTokenCarriesIdentity(t *testing.T) {
	identity := models.Identity{
		UserID: uuid.New(),
		Email:  "alice@example.com",
		Role:   models.RoleSupport,
	}

	token, err := NewAccessToken(identity, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims := parseClaims(t, token, "test-secret")
	if claims.UserID != identity.UserID {
		t.Errorf("UserID = %s, want %s", claims.UserID, identity.UserID)
	}
	if claims.Email != identity.Email {
		t.Errorf("Email = %s, want %s", claims.Email, identity.Email)
	}
	if claims.Role != models.RoleSupport {
		t.Errorf("Role = %s, want %s", claims.Role, models.RoleSupport)
	}
	if claims.Subject != identity.UserID.String() {
		t.Errorf("Subject = %s, want %s", claims.Subject, identity.UserID)
	}
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	identity := models.Identity{UserID: uuid.New(), Email: "a@example.com", Role: models.RoleClient}

	token, err := NewAccessToken(identity, "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	_, err = jwt.ParseWithClaims(token, &CustomClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil {
		t.Error("expected verification to fail with the wrong secret")
	}
}

func TestNewAccessTokenExpiry(t *testing.T) {
	identity := models.Identity{UserID: uuid.New(), Email: "a@example.com", Role: models.RoleClient}

	token, err := NewAccessToken(identity, "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	_, err = jwt.ParseWithClaims(token, &CustomClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err == nil {
		t.Error("expected an expired-token error")
	}
}
