package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/config"
	"github.com/cardchat/cardchat-go/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := NewDB(context.Background(), config.Database{
		Driver: DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db, DriverSQLite, MigrateUp, zap.NewNop()))
	return db
}

func seedUser(t *testing.T, db *sqlx.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "hash", CreatedAt: 100, UpdatedAt: 100}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedChat(t *testing.T, db *sqlx.DB, userID int64) *model.Chat {
	t.Helper()
	c := &model.Chat{UserID: userID, Title: model.PlaceholderChatTitle, CreatedAt: 100, UpdatedAt: 100}
	require.NoError(t, NewChatRepository(db).Create(context.Background(), c))
	return c
}

func seedDeck(t *testing.T, db *sqlx.DB, userID int64, chatID *int64) *model.Deck {
	t.Helper()
	d := &model.Deck{UserID: userID, ChatID: chatID, Title: "Deck", Color: model.DefaultDeckColor, CreatedAt: 100, UpdatedAt: 100}
	require.NoError(t, NewDeckRepository(db).Create(context.Background(), d))
	return d
}

func seedCard(t *testing.T, db *sqlx.DB, userID, deckID int64, q string) *model.Flashcard {
	t.Helper()
	c := &model.Flashcard{UserID: userID, DeckID: deckID, Question: q, Answer: "a", CreatedAt: 100, UpdatedAt: 100}
	require.NoError(t, NewFlashcardRepository(db).Create(context.Background(), c))
	return c
}

func int64Ptr(v int64) *int64 { return &v }
