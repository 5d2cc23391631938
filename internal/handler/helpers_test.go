package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/config"
	"github.com/cardchat/cardchat-go/internal/crypto"
	"github.com/cardchat/cardchat-go/internal/llm"
	"github.com/cardchat/cardchat-go/internal/repository"
	"github.com/cardchat/cardchat-go/internal/service"
)

const (
	testJWTSecret  = "handler-test-secret"
	testVendorKey  = "sk-ant-REDACTED"
	fakeChatReply  = "## Cells\n\nA cell is the basic unit of life."
	fakeTitleReply = "Cell Biology"
	fakeCardsReply = `Here you go:
[{"question":"What is a cell?","answer":"The basic unit of life."},
 {"question":"Who coined the term cell?","answer":"Robert Hooke."}]`
)

// fakeAnthropic mimics the Messages API closely enough for the client.
type fakeAnthropic struct {
	mu     sync.Mutex
	status int
	delay  time.Duration
	cards  string
	calls  int
}

func (f *fakeAnthropic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	status, delay, cards := f.status, f.delay, f.cards
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if r.Header.Get("x-api-key") == "" {
		status = http.StatusUnauthorized
	}
	if status != 0 && status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
		return
	}

	var req struct {
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	var system string
	for _, block := range req.System {
		system += block.Text
	}

	text := fakeChatReply
	switch {
	case strings.Contains(system, "JSON array"):
		text = fakeCardsReply
		if cards != "" {
			text = cards
		}
	case strings.Contains(system, "name conversations"):
		text = fakeTitleReply
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"content":     []map[string]string{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
	})
}

func (f *fakeAnthropic) set(fn func(f *fakeAnthropic)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	vendor *fakeAnthropic
}

func newTestServer(t *testing.T, overrides ...func(*RouterConfig)) *testServer {
	t.Helper()

	vendor := &fakeAnthropic{}
	vendorSrv := httptest.NewServer(vendor)
	t.Cleanup(vendorSrv.Close)

	db, err := repository.NewDB(context.Background(), config.Database{
		Driver: repository.DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "handler.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	require.NoError(t, repository.Migrate(db, repository.DriverSQLite, repository.MigrateUp, log))

	cipher, err := crypto.NewAPIKeyCipher("handler-test-encryption")
	require.NoError(t, err)

	client := llm.NewClient(llm.ClientConfig{
		BaseURL: vendorSrv.URL,
		Model:   "claude-test",
		Timeout: 300 * time.Millisecond,
	})

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	deckRepo := repository.NewDeckRepository(db)
	cardRepo := repository.NewFlashcardRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	blocklist := service.NewTokenBlocklist()
	users := service.NewUserService(userRepo, cipher, client, log)
	svc := Services{
		Auth:       service.NewAuthService(userRepo, blocklist, testJWTSecret, time.Hour, log),
		Users:      users,
		Chats:      service.NewChatService(chatRepo, deckRepo, users, client, log),
		Generate:   service.NewGenerateService(chatRepo, deckRepo, cardRepo, users, client, log),
		Decks:      service.NewDeckService(deckRepo, cardRepo, chatRepo, log),
		Flashcards: service.NewFlashcardService(cardRepo, deckRepo, log),
		Reviews:    service.NewReviewService(reviewRepo, log),
	}

	cfg := RouterConfig{
		JWTSecret:          testJWTSecret,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		AuthRPS:            1000,
		AuthBurst:          1000,
		LLMRPS:             1000,
		LLMBurst:           1000,
	}
	for _, o := range overrides {
		o(&cfg)
	}
	router := NewRouter(cfg, svc, blocklist, log)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{t: t, srv: srv, vendor: vendor}
}

// do sends a JSON request and returns the status and raw body.
func (s *testServer) do(method, path, token string, body any) (int, []byte) {
	s.t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, rd)
	require.NoError(s.t, err)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, raw
}

// doJSON is do plus decoding into out and a status check.
func (s *testServer) doJSON(method, path, token string, body any, wantStatus int, out any) {
	s.t.Helper()
	status, raw := s.do(method, path, token, body)
	require.Equal(s.t, wantStatus, status, "body: %s", raw)
	if out != nil {
		require.NoError(s.t, json.Unmarshal(raw, out))
	}
}

// register creates a user and returns its token.
func (s *testServer) register(username string) string {
	s.t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	s.doJSON(http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": username, "password": "password1"}, http.StatusCreated, &resp)
	return resp.Token
}

// registerWithKey creates a user with a stored vendor key and returns its token.
func (s *testServer) registerWithKey(username string) string {
	s.t.Helper()
	token := s.register(username)
	s.doJSON(http.MethodPost, "/api/user/apikey", token,
		map[string]string{"api_key": testVendorKey}, http.StatusOK, nil)
	return token
}

type apiError struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func decodeError(t *testing.T, raw []byte) apiError {
	t.Helper()
	var e apiError
	require.NoError(t, json.Unmarshal(raw, &e), "body: %s", raw)
	return e
}
