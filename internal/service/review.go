package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/repository"
)

const (
	recentReviewWindow = 7 * 24 * time.Hour
	defaultReviewLimit = 500
)

// ReviewService records reviews and summarises them.
type ReviewService struct {
	reviews *repository.ReviewRepository
	log     *zap.Logger
	now     func() int64
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews *repository.ReviewRepository, log *zap.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		log:     log,
		now:     unixNow,
	}
}

// Create records a review at the current time and bumps the card's counters.
func (s *ReviewService) Create(ctx context.Context, userID int64, req model.CreateReviewRequest) (model.CreateReviewResponse, error) {
	review := model.FlashcardReview{
		UserID:      userID,
		FlashcardID: req.FlashcardID,
		Score:       *req.Score,
		ReviewTime:  s.now(),
	}

	card, err := s.reviews.Create(ctx, &review)
	if err != nil {
		return model.CreateReviewResponse{}, translate(err)
	}

	s.log.Debug("review recorded",
		zap.Int64("user_id", userID), zap.Int64("flashcard_id", review.FlashcardID), zap.Int("score", review.Score))
	return model.CreateReviewResponse{Review: review, Flashcard: *card}, nil
}

// List returns the user's reviews, newest first, optionally for one card.
func (s *ReviewService) List(ctx context.Context, userID int64, flashcardID *int64) ([]model.FlashcardReview, error) {
	return s.reviews.List(ctx, userID, repository.ReviewFilter{
		FlashcardID: flashcardID,
		Limit:       defaultReviewLimit,
	})
}

// Stats summarises the user's reviews and cards.
func (s *ReviewService) Stats(ctx context.Context, userID int64) (model.ReviewStats, error) {
	since := s.now() - int64(recentReviewWindow/time.Second)
	return s.reviews.Stats(ctx, userID, since)
}
