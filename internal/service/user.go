package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/crypto"
	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/repository"
)

// UserService manages the vendor key a user brings for LLM calls.
type UserService struct {
	repo   *repository.UserRepository
	cipher *crypto.APIKeyCipher
	llm    Completer
	log    *zap.Logger
	now    func() int64
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.UserRepository, cipher *crypto.APIKeyCipher, completer Completer, log *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		cipher: cipher,
		llm:    completer,
		log:    log,
		now:    unixNow,
	}
}

// APIKeyStatus reports whether a key is stored and shows it masked.
func (s *UserService) APIKeyStatus(ctx context.Context, userID int64) (model.APIKeyStatusResponse, error) {
	key, err := s.VendorKey(ctx, userID)
	if errors.Is(err, ErrAPIKeyMissing) {
		return model.APIKeyStatusResponse{}, nil
	}
	if err != nil {
		return model.APIKeyStatusResponse{}, err
	}

	return model.APIKeyStatusResponse{
		HasAPIKey: true,
		MaskedKey: crypto.MaskVendorKey(key),
	}, nil
}

// SetAPIKey encrypts and stores a vendor key, replacing any previous one.
// With verify set the provider must accept the key first.
func (s *UserService) SetAPIKey(ctx context.Context, userID int64, req model.APIKeyRequest) (model.APIKeyStatusResponse, error) {
	if req.Verify {
		if err := s.llm.Verify(ctx, req.APIKey); err != nil {
			return model.APIKeyStatusResponse{}, translateLLM(err)
		}
	}

	encrypted, err := s.cipher.Encrypt(req.APIKey)
	if err != nil {
		return model.APIKeyStatusResponse{}, fmt.Errorf("encrypting api key: %w", err)
	}

	if err := s.repo.SetAPIKey(ctx, userID, &encrypted, s.now()); err != nil {
		return model.APIKeyStatusResponse{}, translate(err)
	}

	s.log.Info("api key stored", zap.Int64("user_id", userID), zap.Bool("verified", req.Verify))
	return model.APIKeyStatusResponse{
		HasAPIKey: true,
		MaskedKey: crypto.MaskVendorKey(req.APIKey),
	}, nil
}

// DeleteAPIKey removes the stored vendor key.
func (s *UserService) DeleteAPIKey(ctx context.Context, userID int64) error {
	if err := s.repo.SetAPIKey(ctx, userID, nil, s.now()); err != nil {
		return translate(err)
	}
	s.log.Info("api key removed", zap.Int64("user_id", userID))
	return nil
}

// VendorKey returns the user's decrypted vendor key, or ErrAPIKeyMissing.
func (s *UserService) VendorKey(ctx context.Context, userID int64) (string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", translate(err)
	}
	if !user.HasAPIKey() {
		return "", ErrAPIKeyMissing
	}

	key, err := s.cipher.Decrypt(*user.EncryptedAPIKey)
	if err != nil {
		return "", fmt.Errorf("decrypting api key: %w", err)
	}
	return key, nil
}
