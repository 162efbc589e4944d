//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-auth-service/internal/config"
	"go-auth-service/internal/handler"
	"go-auth-service/internal/middleware"
	"go-auth-service/internal/repository"
	"go-auth-service/internal/router"
	"go-auth-service/internal/service"
)

type testEnv struct {
	server *httptest.Server
	users  *repository.MemoryUserRepository
	auth   *service.AuthService
}

// newTestEnv wires the full HTTP stack against the in-memory user store.
func newTestEnv(t *testing.T, tokenTTL time.Duration) *testEnv {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	hasher := service.NewPasswordHasher(bcrypt.MinCost, 4)
	tokenService := service.NewTokenService("test-secret")
	revocationStore := service.NewRevocationStore()
	authService := service.NewAuthService(users, hasher, tokenService, revocationStore, tokenTTL)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, revocationStore)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		JWTSecret:        "test-secret",
		TokenTTL:         tokenTTL,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, userHandler))
	t.Cleanup(server.Close)

	return &testEnv{server: server, users: users, auth: authService}
}

func (e *testEnv) seedAdmin(t *testing.T, email string, password string) {
	t.Helper()
	require.NoError(t, e.auth.EnsureAdmin(t.Context(), email, password))
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) request(t *testing.T, method string, path string, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) register(t *testing.T, email string, password string) map[string]any {
	t.Helper()

	resp := e.postJSON(t, "/api/auth/register", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody(t, resp)
}

func (e *testEnv) login(t *testing.T, email string, password string) string {
	t.Helper()

	resp := e.postJSON(t, "/api/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	parsed := decodeBody(t, resp)
	token, _ := parsed["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
