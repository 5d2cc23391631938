package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/cardchat/cardchat-go/internal/model"
)

var (
	ErrDeckNotFound  = errors.New("deck not found")
	ErrDuplicateDeck = errors.New("chat already has a deck")
)

const deckColumns = `id, user_id, chat_id, title, description, color, created_at, updated_at`

// DeckRepository handles deck persistence operations.
type DeckRepository struct {
	db *sqlx.DB
}

// NewDeckRepository creates a new DeckRepository.
func NewDeckRepository(db *sqlx.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

// Create inserts a deck and sets its generated ID. A second deck for the
// same chat fails with ErrDuplicateDeck.
func (r *DeckRepository) Create(ctx context.Context, deck *model.Deck) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO decks (user_id, chat_id, title, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		deck.UserID, deck.ChatID, deck.Title, deck.Description, deck.Color, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateDeck
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	deck.ID = id
	return nil
}

// GetOrCreateForChat inserts deck unless its chat already has one, in which
// case deck is overwritten with the existing row. The unique index on
// chat_id decides the race between concurrent callers.
func (r *DeckRepository) GetOrCreateForChat(ctx context.Context, deck *model.Deck) (bool, error) {
	if deck.ChatID == nil {
		return false, errors.New("deck has no chat")
	}

	err := r.Create(ctx, deck)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrDuplicateDeck) {
		return false, err
	}

	existing, err := r.GetByChatID(ctx, deck.UserID, *deck.ChatID)
	if err != nil {
		return false, err
	}

	*deck = *existing
	return false, nil
}

// GetByID retrieves a deck owned by userID.
func (r *DeckRepository) GetByID(ctx context.Context, userID, deckID int64) (*model.Deck, error) {
	return r.getOne(ctx, `SELECT `+deckColumns+` FROM decks WHERE id = ? AND user_id = ?`, deckID, userID)
}

// GetByChatID retrieves the deck generated from a chat.
func (r *DeckRepository) GetByChatID(ctx context.Context, userID, chatID int64) (*model.Deck, error) {
	return r.getOne(ctx, `SELECT `+deckColumns+` FROM decks WHERE chat_id = ? AND user_id = ?`, chatID, userID)
}

// ListByUser retrieves a user's decks with their card counts, most recently updated first.
func (r *DeckRepository) ListByUser(ctx context.Context, userID int64) ([]model.DeckSummary, error) {
	query := `SELECT d.id, d.user_id, d.chat_id, d.title, d.description, d.color, d.created_at, d.updated_at,
			COUNT(f.id) AS card_count
		FROM decks d
		LEFT JOIN flashcards f ON f.deck_id = d.id
		WHERE d.user_id = ?
		GROUP BY d.id, d.user_id, d.chat_id, d.title, d.description, d.color, d.created_at, d.updated_at
		ORDER BY d.updated_at DESC, d.id DESC`

	decks := []model.DeckSummary{}
	err := r.db.SelectContext(ctx, &decks, query, userID)
	return decks, err
}

// Update saves a deck's editable fields.
func (r *DeckRepository) Update(ctx context.Context, deck *model.Deck) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE decks SET title = ?, description = ?, color = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		deck.Title, deck.Description, deck.Color, deck.UpdatedAt, deck.ID, deck.UserID)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrDeckNotFound)
}

// Delete removes a deck owned by userID. Its flashcards go with it through the foreign key.
func (r *DeckRepository) Delete(ctx context.Context, userID, deckID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ? AND user_id = ?`, deckID, userID)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrDeckNotFound)
}

func (r *DeckRepository) getOne(ctx context.Context, query string, args ...any) (*model.Deck, error) {
	deck := &model.Deck{}
	if err := r.db.GetContext(ctx, deck, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeckNotFound
		}
		return nil, err
	}
	return deck, nil
}
