package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/services"

	"github.com/google/uuid"
)

// stubAuthService returns scripted results for handler tests.
type stubAuthService struct {
	token    string
	identity models.Identity
	err      error
}

func (s *stubAuthService) Signup(context.Context, string, string) (string, models.Identity, error) {
	return s.token, s.identity, s.err
}

func (s *stubAuthService) Login(context.Context, string, string) (string, models.Identity, error) {
	return s.token, s.identity, s.err
}

func (s *stubAuthService) GoogleLogin(context.Context, string) (string, models.Identity, error) {
	return s.token, s.identity, s.err
}

func (s *stubAuthService) Logout(context.Context, uuid.UUID) error {
	return s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleSignupStatusMapping(t *testing.T) {
	identity := models.Identity{UserID: uuid.New(), Email: "a@example.com", Role: models.RoleClient}

	tests := []struct {
		name       string
		body       string
		svc        *stubAuthService
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"email":"a@example.com","password":"longenoughpw"}`,
			svc:        &stubAuthService{token: "tok", identity: identity},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       `{`,
			svc:        &stubAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing fields",
			body:       `{"email":"a@example.com"}`,
			svc:        &stubAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"email":"a@example.com","password":"longenoughpw"}`,
			svc:        &stubAuthService{err: services.ErrUserAlreadyExists},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "weak password",
			body:       `{"email":"a@example.com","password":"short"}`,
			svc:        &stubAuthService{err: services.ErrWeakPassword},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "internal error",
			body:       `{"email":"a@example.com","password":"longenoughpw"}`,
			svc:        &stubAuthService{err: context.DeadlineExceeded},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(tt.svc)
			rec := postJSON(t, h.HandleSignup, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHandleSignupResponseBody(t *testing.T) {
	identity := models.Identity{UserID: uuid.New(), Email: "a@example.com", Role: models.RoleSupport}
	h := NewAuthHandler(&stubAuthService{token: "tok-123", identity: identity})

	rec := postJSON(t, h.HandleSignup, `{"email":"a@example.com","password":"longenoughpw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken != "tok-123" {
		t.Errorf("AccessToken = %q", resp.AccessToken)
	}
	if resp.User.ID != identity.UserID || resp.User.Role != models.RoleSupport {
		t.Errorf("User = %+v", resp.User)
	}
}

func TestHandleLoginStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		svc        *stubAuthService
		wantStatus int
	}{
		{"success", &stubAuthService{token: "tok"}, http.StatusOK},
		{"invalid credentials", &stubAuthService{err: services.ErrInvalidCredentials}, http.StatusUnauthorized},
		{"internal error", &stubAuthService{err: context.DeadlineExceeded}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(tt.svc)
			rec := postJSON(t, h.HandleLogin, `{"email":"a@example.com","password":"pw-whatever"}`)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleGoogleLoginStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		svc        *stubAuthService
		wantStatus int
	}{
		{"success", &stubAuthService{token: "tok"}, http.StatusOK},
		{"empty token", &stubAuthService{err: services.ErrValidation}, http.StatusBadRequest},
		{"verification failed", &stubAuthService{err: services.ErrGoogleSignIn}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(tt.svc)
			rec := postJSON(t, h.HandleGoogleLogin, `{"id_token":"google-token"}`)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
