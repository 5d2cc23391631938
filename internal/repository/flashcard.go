package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardchat/cardchat-go/internal/model"
)

var ErrFlashcardNotFound = errors.New("flashcard not found")

const flashcardColumns = `id, user_id, deck_id, question, answer, difficulty, review_count, last_reviewed, created_at, updated_at`

const insertFlashcardQuery = `INSERT INTO flashcards
	(user_id, deck_id, question, answer, difficulty, review_count, last_reviewed, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// FlashcardFilter narrows a flashcard listing.
type FlashcardFilter struct {
	DeckID *int64
}

// FlashcardRepository handles flashcard persistence operations.
type FlashcardRepository struct {
	db *sqlx.DB
}

// NewFlashcardRepository creates a new FlashcardRepository.
func NewFlashcardRepository(db *sqlx.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// Create inserts a flashcard and sets its generated ID.
func (r *FlashcardRepository) Create(ctx context.Context, card *model.Flashcard) error {
	return insertFlashcard(ctx, r.db, card)
}

// CreateBatch inserts all cards in one transaction; either every card is stored or none.
func (r *FlashcardRepository) CreateBatch(ctx context.Context, cards []model.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range cards {
		if err := insertFlashcard(ctx, tx, &cards[i]); err != nil {
			return fmt.Errorf("inserting card %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func insertFlashcard(ctx context.Context, q querier, card *model.Flashcard) error {
	result, err := q.ExecContext(ctx, insertFlashcardQuery,
		card.UserID, card.DeckID, card.Question, card.Answer, card.Difficulty,
		card.ReviewCount, card.LastReviewed, card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	card.ID = id
	return nil
}

// GetByID retrieves a flashcard owned by userID.
func (r *FlashcardRepository) GetByID(ctx context.Context, userID, cardID int64) (*model.Flashcard, error) {
	return getFlashcard(ctx, r.db, userID, cardID)
}

func getFlashcard(ctx context.Context, q querier, userID, cardID int64) (*model.Flashcard, error) {
	card := &model.Flashcard{}
	err := q.GetContext(ctx, card,
		`SELECT `+flashcardColumns+` FROM flashcards WHERE id = ? AND user_id = ?`, cardID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFlashcardNotFound
		}
		return nil, err
	}
	return card, nil
}

// List retrieves a user's flashcards in creation order.
func (r *FlashcardRepository) List(ctx context.Context, userID int64, filter FlashcardFilter) ([]model.Flashcard, error) {
	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE user_id = ?`
	args := []any{userID}

	if filter.DeckID != nil {
		query += ` AND deck_id = ?`
		args = append(args, *filter.DeckID)
	}
	query += ` ORDER BY id ASC`

	cards := []model.Flashcard{}
	err := r.db.SelectContext(ctx, &cards, query, args...)
	return cards, err
}

// Update saves a flashcard's editable fields.
func (r *FlashcardRepository) Update(ctx context.Context, card *model.Flashcard) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE flashcards SET deck_id = ?, question = ?, answer = ?, difficulty = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		card.DeckID, card.Question, card.Answer, card.Difficulty, card.UpdatedAt, card.ID, card.UserID)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrFlashcardNotFound)
}

// Delete removes a flashcard owned by userID.
func (r *FlashcardRepository) Delete(ctx context.Context, userID, cardID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = ? AND user_id = ?`, cardID, userID)
	if err != nil {
		return err
	}
	return expectAffected(result, ErrFlashcardNotFound)
}
