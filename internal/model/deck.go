package model

// DefaultDeckColor is used when a deck is created without a color.
const DefaultDeckColor = "#3B82F6"

// Deck groups flashcards. A deck generated from a chat keeps a reference to it.
type Deck struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"user_id"`
	ChatID      *int64 `db:"chat_id" json:"chat_id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Color       string `db:"color" json:"color"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
	UpdatedAt   int64  `db:"updated_at" json:"updated_at"`
}

// DeckSummary is a deck with its card count, as returned by list.
type DeckSummary struct {
	Deck
	CardCount int `db:"card_count" json:"card_count"`
}

// CreateDeckRequest creates a deck by hand.
type CreateDeckRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	ChatID      *int64 `json:"chat_id" validate:"omitempty,gt=0"`
}

// UpdateDeckRequest patches a deck. Nil fields are left unchanged.
type UpdateDeckRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

// DeckDetailResponse is a deck with its flashcards.
type DeckDetailResponse struct {
	Deck
	Flashcards []Flashcard `json:"flashcards"`
}

// GenerateFlashcardsResponse is returned by the generate-flashcards routes.
type GenerateFlashcardsResponse struct {
	Deck       Deck        `json:"deck"`
	Flashcards []Flashcard `json:"flashcards"`
}
