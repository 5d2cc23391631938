package model

// Difficulty and score bounds.
const (
	MinDifficulty = 0
	MaxDifficulty = 5
	MinScore      = 0
	MaxScore      = 5
)

// Flashcard is a question/answer pair with review metadata.
type Flashcard struct {
	ID           int64  `db:"id" json:"id"`
	UserID       int64  `db:"user_id" json:"user_id"`
	DeckID       int64  `db:"deck_id" json:"deck_id"`
	Question     string `db:"question" json:"question"`
	Answer       string `db:"answer" json:"answer"`
	Difficulty   int    `db:"difficulty" json:"difficulty"`
	ReviewCount  int    `db:"review_count" json:"review_count"`
	LastReviewed *int64 `db:"last_reviewed" json:"last_reviewed"`
	CreatedAt    int64  `db:"created_at" json:"created_at"`
	UpdatedAt    int64  `db:"updated_at" json:"updated_at"`
}

// CreateFlashcardRequest adds a card to an owned deck.
type CreateFlashcardRequest struct {
	DeckID     int64  `json:"deck_id" validate:"required,gt=0"`
	Question   string `json:"question" validate:"required,notblank,max=4000"`
	Answer     string `json:"answer" validate:"required,notblank,max=8000"`
	Difficulty int    `json:"difficulty" validate:"min=0,max=5"`
}

// UpdateFlashcardRequest patches a card. Nil fields are left unchanged.
type UpdateFlashcardRequest struct {
	DeckID     *int64  `json:"deck_id" validate:"omitempty,gt=0"`
	Question   *string `json:"question" validate:"omitempty,notblank,max=4000"`
	Answer     *string `json:"answer" validate:"omitempty,notblank,max=8000"`
	Difficulty *int    `json:"difficulty" validate:"omitempty,min=0,max=5"`
}

// FlashcardReview is one scored recall of a card.
type FlashcardReview struct {
	ID          int64 `db:"id" json:"id"`
	UserID      int64 `db:"user_id" json:"user_id"`
	FlashcardID int64 `db:"flashcard_id" json:"flashcard_id"`
	Score       int   `db:"score" json:"score"`
	ReviewTime  int64 `db:"review_time" json:"review_time"`
}

// CreateReviewRequest records a review. Score is a pointer so 0 is distinguishable from missing.
type CreateReviewRequest struct {
	FlashcardID int64 `json:"flashcard_id" validate:"required,gt=0"`
	Score       *int  `json:"score" validate:"required,min=0,max=5"`
}

// CreateReviewResponse returns the review and the updated card.
type CreateReviewResponse struct {
	Review    FlashcardReview `json:"review"`
	Flashcard Flashcard       `json:"flashcard"`
}

// ReviewStats summarises a user's review history.
type ReviewStats struct {
	TotalReviews       int         `json:"total_reviews"`
	CardsReviewed      int         `json:"cards_reviewed"`
	AverageScore       float64     `json:"average_score"`
	ReviewsLast7Days   int         `json:"reviews_last_7_days"`
	ScoreDistribution  map[int]int `json:"score_distribution"`
	TotalCards         int         `json:"total_cards"`
	CardsNeverReviewed int         `json:"cards_never_reviewed"`
}
