package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardchat/cardchat-go/internal/model"
)

const reviewColumns = `id, user_id, flashcard_id, score, review_time`

// ReviewFilter narrows a review listing.
type ReviewFilter struct {
	FlashcardID *int64
	Limit       int
}

// ReviewRepository handles flashcard review persistence operations.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create stores a review and, in the same transaction, increments the card's
// review_count and sets last_reviewed to the review time. It returns the
// updated card.
func (r *ReviewRepository) Create(ctx context.Context, review *model.FlashcardReview) (*model.Flashcard, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE flashcards SET review_count = review_count + 1, last_reviewed = ?
		WHERE id = ? AND user_id = ?`,
		review.ReviewTime, review.FlashcardID, review.UserID)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(result, ErrFlashcardNotFound); err != nil {
		return nil, err
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO flashcard_reviews (user_id, flashcard_id, score, review_time) VALUES (?, ?, ?, ?)`,
		review.UserID, review.FlashcardID, review.Score, review.ReviewTime)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	review.ID = id

	card, err := getFlashcard(ctx, tx, review.UserID, review.FlashcardID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return card, nil
}

// List retrieves a user's reviews, newest first.
func (r *ReviewRepository) List(ctx context.Context, userID int64, filter ReviewFilter) ([]model.FlashcardReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM flashcard_reviews WHERE user_id = ?`
	args := []any{userID}

	if filter.FlashcardID != nil {
		query += ` AND flashcard_id = ?`
		args = append(args, *filter.FlashcardID)
	}
	query += ` ORDER BY review_time DESC, id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}

	reviews := []model.FlashcardReview{}
	err := r.db.SelectContext(ctx, &reviews, query, args...)
	return reviews, err
}

// Stats aggregates a user's reviews. since bounds the recent-review counter.
func (r *ReviewRepository) Stats(ctx context.Context, userID int64, since int64) (model.ReviewStats, error) {
	stats := model.ReviewStats{ScoreDistribution: map[int]int{}}
	for s := model.MinScore; s <= model.MaxScore; s++ {
		stats.ScoreDistribution[s] = 0
	}

	var totals struct {
		Total   int     `db:"total"`
		Cards   int     `db:"cards"`
		Average float64 `db:"average"`
	}
	err := r.db.GetContext(ctx, &totals,
		`SELECT COUNT(*) AS total, COUNT(DISTINCT flashcard_id) AS cards, COALESCE(AVG(score), 0) AS average
		FROM flashcard_reviews WHERE user_id = ?`, userID)
	if err != nil {
		return model.ReviewStats{}, fmt.Errorf("review totals: %w", err)
	}
	stats.TotalReviews = totals.Total
	stats.CardsReviewed = totals.Cards
	stats.AverageScore = totals.Average

	err = r.db.GetContext(ctx, &stats.ReviewsLast7Days,
		`SELECT COUNT(*) FROM flashcard_reviews WHERE user_id = ? AND review_time >= ?`, userID, since)
	if err != nil {
		return model.ReviewStats{}, fmt.Errorf("recent reviews: %w", err)
	}

	var buckets []struct {
		Score int `db:"score"`
		N     int `db:"n"`
	}
	err = r.db.SelectContext(ctx, &buckets,
		`SELECT score, COUNT(*) AS n FROM flashcard_reviews WHERE user_id = ? GROUP BY score`, userID)
	if err != nil {
		return model.ReviewStats{}, fmt.Errorf("score distribution: %w", err)
	}
	for _, b := range buckets {
		stats.ScoreDistribution[b.Score] = b.N
	}

	var cards struct {
		Total int `db:"total"`
		Never int `db:"never"`
	}
	err = r.db.GetContext(ctx, &cards,
		`SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN review_count = 0 THEN 1 ELSE 0 END), 0) AS never
		FROM flashcards WHERE user_id = ?`, userID)
	if err != nil {
		return model.ReviewStats{}, fmt.Errorf("card totals: %w", err)
	}
	stats.TotalCards = cards.Total
	stats.CardsNeverReviewed = cards.Never

	return stats, nil
}
