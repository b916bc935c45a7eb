package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventfoto/face-indexer/internal/config"
)

func testAuthConfig(t *testing.T) *config.AuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &config.AuthConfig{
		JWTSecret:     "test-secret",
		AdminUser:     "admin",
		AdminPassHash: string(hash),
	}
}

func loginWith(t *testing.T, handler *AuthHandler, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestLoginIssuesValidToken(t *testing.T) {
	cfg := testAuthConfig(t)
	handler := NewAuthHandler(cfg)

	rec := loginWith(t, handler, "admin", "hunter2")
	assertStatusCode(t, rec, http.StatusOK)

	var resp LoginResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not validate: %v", err)
	}
	subject, _ := token.Claims.GetSubject()
	if subject != "admin" {
		t.Errorf("expected subject admin, got %s", subject)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	handler := NewAuthHandler(testAuthConfig(t))

	rec := loginWith(t, handler, "admin", "wrong")
	assertStatusCode(t, rec, http.StatusUnauthorized)
	assertJSONError(t, rec, "invalid credentials")
}

func TestLoginRejectsWrongUser(t *testing.T) {
	handler := NewAuthHandler(testAuthConfig(t))

	rec := loginWith(t, handler, "root", "hunter2")
	assertStatusCode(t, rec, http.StatusUnauthorized)
}

func TestLoginRejectsMissingFields(t *testing.T) {
	handler := NewAuthHandler(testAuthConfig(t))

	rec := loginWith(t, handler, "", "")
	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestLoginRejectsInvalidBody(t *testing.T) {
	handler := NewAuthHandler(testAuthConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
	assertJSONError(t, rec, errInvalidRequestBody)
}
