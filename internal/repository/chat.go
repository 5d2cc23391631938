package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/cardchat/cardchat-go/internal/model"
)

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
)

const (
	chatColumns    = `id, user_id, title, created_at, updated_at`
	messageColumns = `id, chat_id, role, content, created_at`
)

// ChatRepository handles chat and message persistence operations.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create inserts a chat and sets its generated ID.
func (r *ChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO chats (user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		chat.UserID, chat.Title, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	chat.ID = id
	return nil
}

// GetByID retrieves a chat owned by userID.
func (r *ChatRepository) GetByID(ctx context.Context, userID, chatID int64) (*model.Chat, error) {
	chat := &model.Chat{}
	err := r.db.GetContext(ctx, chat,
		`SELECT `+chatColumns+` FROM chats WHERE id = ? AND user_id = ?`, chatID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return chat, nil
}

// ListByUser retrieves a user's chats, most recently active first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID int64) ([]model.Chat, error) {
	chats := []model.Chat{}
	err := r.db.SelectContext(ctx, &chats,
		`SELECT `+chatColumns+` FROM chats WHERE user_id = ? ORDER BY updated_at DESC, id DESC`, userID)
	return chats, err
}

// UpdateTitle renames a chat owned by userID.
func (r *ChatRepository) UpdateTitle(ctx context.Context, userID, chatID int64, title string, now int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE chats SET title = ?, updated_at = ? WHERE id = ? AND user_id = ?`, title, now, chatID, userID)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrChatNotFound)
}

// Touch advances a chat's updated_at.
func (r *ChatRepository) Touch(ctx context.Context, chatID int64, now int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE chats SET updated_at = ? WHERE id = ?`, now, chatID)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrChatNotFound)
}

// Delete removes a chat owned by userID. Messages go with it through the foreign key.
func (r *ChatRepository) Delete(ctx context.Context, userID, chatID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ? AND user_id = ?`, chatID, userID)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrChatNotFound)
}

// CreateMessage appends a message to a chat and sets its generated ID.
func (r *ChatRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (chat_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		msg.ChatID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	msg.ID = id
	return nil
}

// ListMessages retrieves a chat's messages in insertion order.
func (r *ChatRepository) ListMessages(ctx context.Context, chatID int64) ([]model.Message, error) {
	msgs := []model.Message{}
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE chat_id = ? ORDER BY id ASC`, chatID)
	return msgs, err
}

// GetMessage retrieves one message of a chat.
func (r *ChatRepository) GetMessage(ctx context.Context, chatID, messageID int64) (*model.Message, error) {
	msg := &model.Message{}
	err := r.db.GetContext(ctx, msg,
		`SELECT `+messageColumns+` FROM messages WHERE id = ? AND chat_id = ?`, messageID, chatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// CountMessages returns how many messages a chat holds.
func (r *ChatRepository) CountMessages(ctx context.Context, chatID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM messages WHERE chat_id = ?`, chatID)
	return n, err
}
