package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/crypto"
	"github.com/cardchat/cardchat-go/internal/handler"
	"github.com/cardchat/cardchat-go/internal/llm"
	"github.com/cardchat/cardchat-go/internal/repository"
	"github.com/cardchat/cardchat-go/internal/service"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := repository.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db, cfg.Database.Driver, repository.MigrateUp, log); err != nil {
			return err
		}
	}

	cipher, err := crypto.NewAPIKeyCipher(cfg.EncryptionSecret)
	if err != nil {
		return err
	}

	client := llm.NewClient(llm.ClientConfig{
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	})

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	deckRepo := repository.NewDeckRepository(db)
	cardRepo := repository.NewFlashcardRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	blocklist := service.NewTokenBlocklist()
	go blocklist.Run(ctx)

	users := service.NewUserService(userRepo, cipher, client, log.Named("user"))
	svc := handler.Services{
		Auth:       service.NewAuthService(userRepo, blocklist, cfg.JWTSecret, cfg.JWTExpiry, log.Named("auth")),
		Users:      users,
		Chats:      service.NewChatService(chatRepo, deckRepo, users, client, log.Named("chat")),
		Generate:   service.NewGenerateService(chatRepo, deckRepo, cardRepo, users, client, log.Named("generate")),
		Decks:      service.NewDeckService(deckRepo, cardRepo, chatRepo, log.Named("deck")),
		Flashcards: service.NewFlashcardService(cardRepo, deckRepo, log.Named("flashcard")),
		Reviews:    service.NewReviewService(reviewRepo, log.Named("review")),
	}

	router := handler.NewRouter(handler.RouterConfig{
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, svc, blocklist, log.Named("http"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port), zap.String("env", cfg.Env),
			zap.String("db_driver", cfg.Database.Driver), zap.String("model", client.Model()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced shutdown", zap.Error(err))
		return err
	}

	log.Info("server stopped")
	return nil
}
