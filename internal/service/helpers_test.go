package service

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/config"
	"github.com/cardchat/cardchat-go/internal/crypto"
	"github.com/cardchat/cardchat-go/internal/llm"
	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/repository"
)

const testVendorKey = "sk-ant-REDACTED"

// fakeLLM answers by request kind. Unset replies fall back to fixed text.
type fakeLLM struct {
	mu       sync.Mutex
	requests []llm.Request
	keys     []string

	chat      func(req llm.Request) (string, error)
	title     func(req llm.Request) (string, error)
	flashcard func(req llm.Request) (string, error)
	verifyErr error
}

func (f *fakeLLM) Complete(ctx context.Context, apiKey string, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.keys = append(f.keys, apiKey)
	f.mu.Unlock()

	switch {
	case req.System == llm.ChatSystemPrompt:
		if f.chat != nil {
			return f.chat(req)
		}
		return "**Answer**", nil
	case req.System == llm.FlashcardRequest("").System:
		if f.flashcard != nil {
			return f.flashcard(req)
		}
		return `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`, nil
	default:
		if f.title != nil {
			return f.title(req)
		}
		return "Generated Title", nil
	}
}

func (f *fakeLLM) Verify(ctx context.Context, apiKey string) error {
	return f.verifyErr
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// stepClock returns a clock that advances one second per call.
func stepClock(start int64) func() int64 {
	var n atomic.Int64
	n.Store(start - 1)
	return func() int64 { return n.Add(1) }
}

type testEnv struct {
	db       *sqlx.DB
	llm      *fakeLLM
	auth     *AuthService
	users    *UserService
	chats    *ChatService
	decks    *DeckService
	cards    *FlashcardService
	reviews  *ReviewService
	generate *GenerateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.NewDB(context.Background(), config.Database{
		Driver: repository.DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "service.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.Migrate(db, repository.DriverSQLite, repository.MigrateUp, zap.NewNop()))

	cipher, err := crypto.NewAPIKeyCipher("test-encryption-secret")
	require.NoError(t, err)

	log := zap.NewNop()
	fake := &fakeLLM{}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	deckRepo := repository.NewDeckRepository(db)
	cardRepo := repository.NewFlashcardRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	users := NewUserService(userRepo, cipher, fake, log)
	env := &testEnv{
		db:       db,
		llm:      fake,
		auth:     NewAuthService(userRepo, NewTokenBlocklist(), "test-secret", time.Hour, log),
		users:    users,
		chats:    NewChatService(chatRepo, deckRepo, users, fake, log),
		decks:    NewDeckService(deckRepo, cardRepo, chatRepo, log),
		cards:    NewFlashcardService(cardRepo, deckRepo, log),
		reviews:  NewReviewService(reviewRepo, log),
		generate: NewGenerateService(chatRepo, deckRepo, cardRepo, users, fake, log),
	}

	clock := stepClock(1_700_000_000)
	env.auth.now = clock
	env.users.now = clock
	env.chats.now = clock
	env.decks.now = clock
	env.cards.now = clock
	env.reviews.now = clock
	env.generate.now = clock

	return env
}

// register creates a user and returns its id.
func (e *testEnv) register(t *testing.T, username string) int64 {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), model.RegisterRequest{Username: username, Password: "password1"})
	require.NoError(t, err)
	return resp.User.ID
}

// registerWithKey creates a user that has a vendor key stored.
func (e *testEnv) registerWithKey(t *testing.T, username string) int64 {
	t.Helper()
	id := e.register(t, username)
	_, err := e.users.SetAPIKey(context.Background(), id, model.APIKeyRequest{APIKey: testVendorKey})
	require.NoError(t, err)
	return id
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
