package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"shopalert/internal/handler/http/auth"
	authservice "shopalert/internal/service/auth"
)

func setupAuthEnv(t *testing.T) *authservice.AuthService {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ADMIN_USER", "admin@example.com")
	t.Setenv("ADMIN_USER_PASSWORD", "correct-horse-battery")

	provider := auth.NewBasicAuthProvider(8, []string{"password", "12345678"})
	return authservice.NewAuthService(provider, auth.PublicEndpoints)
}

func TestTokenHandler_Success(t *testing.T) {
	svc := setupAuthEnv(t)
	handler := auth.TokenHandler(svc)

	body := `{"email":"admin@example.com","password":"correct-horse-battery"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("token is empty")
	}

	// 発行トークンの中身を検証
	tok, err := jwt.Parse(resp.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("issued token does not validate: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["sub"] != "admin@example.com" {
		t.Errorf("sub = %v, want admin@example.com", claims["sub"])
	}
	if claims["role"] != auth.RoleAdmin {
		t.Errorf("role = %v, want %q", claims["role"], auth.RoleAdmin)
	}
}

func TestTokenHandler_InvalidCredentials(t *testing.T) {
	svc := setupAuthEnv(t)
	handler := auth.TokenHandler(svc)

	tests := []struct {
		name string
		body string
	}{
		{name: "wrong password", body: `{"email":"admin@example.com","password":"wrong-password-x"}`},
		{name: "wrong user", body: `{"email":"intruder@example.com","password":"correct-horse-battery"}`},
		{name: "empty credentials", body: `{"email":"","password":""}`},
		{name: "short password", body: `{"email":"admin@example.com","password":"short"}`},
		{name: "weak password", body: `{"email":"admin@example.com","password":"password123"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status code = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestTokenHandler_MalformedBody(t *testing.T) {
	svc := setupAuthEnv(t)
	handler := auth.TokenHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTokenHandler_IssuedTokenPassesAuthz(t *testing.T) {
	svc := setupAuthEnv(t)
	tokenHandler := auth.TokenHandler(svc)

	body := `{"email":"admin@example.com","password":"correct-horse-battery"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	rr := httptest.NewRecorder()
	tokenHandler.ServeHTTP(rr, req)

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	protected := auth.Authz(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	protectedReq := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	protectedReq.Header.Set("Authorization", "Bearer "+resp.Token)
	protectedRR := httptest.NewRecorder()

	protected.ServeHTTP(protectedRR, protectedReq)

	if protectedRR.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", protectedRR.Code, http.StatusOK)
	}
}
