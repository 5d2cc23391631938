package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	var reg struct {
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expires_at"`
		User      struct {
			ID        int64  `json:"id"`
			Username  string `json:"username"`
			HasAPIKey bool   `json:"has_api_key"`
		} `json:"user"`
	}
	s.doJSON(http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": "alice", "password": "password1"}, http.StatusCreated, &reg)
	require.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice", reg.User.Username)
	assert.False(t, reg.User.HasAPIKey)

	var login struct {
		Token string `json:"token"`
	}
	s.doJSON(http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "password1"}, http.StatusOK, &login)
	require.NotEmpty(t, login.Token)

	var me struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	s.doJSON(http.MethodGet, "/api/auth/me", login.Token, nil, http.StatusOK, &me)
	assert.Equal(t, reg.User.ID, me.ID)

	status, raw := s.do(http.MethodPost, "/api/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "logged out", decodeError(t, raw).Message)

	status, raw = s.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "token has been revoked", decodeError(t, raw).Message)

	s.doJSON(http.MethodGet, "/api/auth/me", reg.Token, nil, http.StatusOK, nil)
}

func TestRegister_Errors(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")

	status, raw := s.do(http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": "alice", "password": "password1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "username already taken", decodeError(t, raw).Message)

	status, raw = s.do(http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": "a b", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, status)
	e := decodeError(t, raw)
	assert.Equal(t, "validation failed", e.Message)
	assert.Equal(t, "username", e.Errors["username"])
	assert.Equal(t, "min=8", e.Errors["password"])

	status, raw = s.do(http.MethodPost, "/api/auth/register", "", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid request body", decodeError(t, raw).Message)
}

func TestLogin_IdenticalFailures(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")

	wrongStatus, wrongBody := s.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "password2"})
	unknownStatus, unknownBody := s.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "nobody", "password": "password1"})

	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)
	assert.JSONEq(t, string(wrongBody), string(unknownBody))
	assert.Equal(t, "invalid username or password", decodeError(t, wrongBody).Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/auth/me", "/api/chats", "/api/decks", "/api/flashcards", "/api/flashcard-reviews/stats", "/api/user/apikey"} {
		status, raw := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "missing authorization header", decodeError(t, raw).Message, path)
	}

	status, _ := s.do(http.MethodGet, "/api/chats", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(raw))

	status, raw = s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 404, decodeError(t, raw).Status)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, s.srv.URL+"/api/chats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoginRateLimit_IgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.AuthRPS, cfg.AuthBurst = 0.001, 2
	})

	limited := 0
	for i := 0; i < 10; i++ {
		req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/auth/login",
			strings.NewReader(`{"username":"nobody","password":"password1"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			limited++
			continue
		}
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	assert.Equal(t, 8, limited)
}
