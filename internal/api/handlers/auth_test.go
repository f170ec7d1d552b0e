package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandt/screener/backend/internal/auth"
	"github.com/brandt/screener/backend/pkg/config"
	"github.com/brandt/screener/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func testAuthService() *auth.Service {
	return auth.NewService(config.AuthConfig{
		AppPassword: "hunter2",
		SecretKey:   "test-secret",
		TokenTTL:    time.Hour,
	})
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(testAuthService(), testLogger())

	rr := httptest.NewRecorder()
	h.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{Password: "hunter2"}))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h := NewAuthHandler(testAuthService(), testLogger())

	rr := httptest.NewRecorder()
	h.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{Password: "letmein"}))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Incorrect password", errorMessage(t, rr))
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	h := NewAuthHandler(testAuthService(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{nope"))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", errorMessage(t, rr))
}

func TestAuthHandler_Verify(t *testing.T) {
	h := NewAuthHandler(testAuthService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req = req.WithContext(WithSubject(req.Context(), auth.Subject))

	rr := httptest.NewRecorder()
	h.Verify(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "user", body["user"])
}
