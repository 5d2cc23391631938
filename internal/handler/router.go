package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/middleware"
	"github.com/cardchat/cardchat-go/internal/service"
)

// Services are the business services the router dispatches to.
type Services struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Chats      *service.ChatService
	Generate   *service.GenerateService
	Decks      *service.DeckService
	Flashcards *service.FlashcardService
	Reviews    *service.ReviewService
}

// RouterConfig holds the HTTP-level settings of the API.
type RouterConfig struct {
	JWTSecret          string
	CORSAllowedOrigins []string

	// Zero values fall back to the defaults below.
	AuthRPS   float64
	AuthBurst int
	LLMRPS    float64
	LLMBurst  int
}

const (
	defaultAuthRPS   = 5
	defaultAuthBurst = 10
	defaultLLMRPS    = 1
	defaultLLMBurst  = 5
)

// NewRouter wires every route of the API.
func NewRouter(cfg RouterConfig, svc Services, revoked middleware.RevocationChecker, log *zap.Logger) http.Handler {
	if cfg.AuthRPS == 0 {
		cfg.AuthRPS, cfg.AuthBurst = defaultAuthRPS, defaultAuthBurst
	}
	if cfg.LLMRPS == 0 {
		cfg.LLMRPS, cfg.LLMBurst = defaultLLMRPS, defaultLLMBurst
	}

	authHandler := NewAuthHandler(svc.Auth, log)
	userHandler := NewUserHandler(svc.Users, log)
	chatHandler := NewChatHandler(svc.Chats, svc.Generate, log)
	deckHandler := NewDeckHandler(svc.Decks, log)
	cardHandler := NewFlashcardHandler(svc.Flashcards, svc.Reviews, log)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(corsHandler.Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.AuthRPS, cfg.AuthBurst))
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/login", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret, revoked))

			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/auth/me", authHandler.HandleMe)

			r.Get("/user/apikey", userHandler.HandleGetAPIKey)
			r.Delete("/user/apikey", userHandler.HandleDeleteAPIKey)

			r.Get("/chats", chatHandler.HandleList)
			r.Post("/chats", chatHandler.HandleCreate)
			r.Get("/chats/{id}", chatHandler.HandleGet)
			r.Patch("/chats/{id}", chatHandler.HandleUpdate)
			r.Delete("/chats/{id}", chatHandler.HandleDelete)
			r.Get("/chats/{id}/messages", chatHandler.HandleListMessages)

			r.Get("/decks", deckHandler.HandleList)
			r.Post("/decks", deckHandler.HandleCreate)
			r.Get("/decks/{id}", deckHandler.HandleGet)
			r.Patch("/decks/{id}", deckHandler.HandleUpdate)
			r.Delete("/decks/{id}", deckHandler.HandleDelete)

			r.Get("/flashcards", cardHandler.HandleList)
			r.Post("/flashcards", cardHandler.HandleCreate)
			r.Get("/flashcards/{id}", cardHandler.HandleGet)
			r.Patch("/flashcards/{id}", cardHandler.HandleUpdate)
			r.Delete("/flashcards/{id}", cardHandler.HandleDelete)

			r.Get("/flashcard-reviews", cardHandler.HandleListReviews)
			r.Post("/flashcard-reviews", cardHandler.HandleCreateReview)
			r.Get("/flashcard-reviews/stats", cardHandler.HandleReviewStats)

			// Routes that call the LLM.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByUser(cfg.LLMRPS, cfg.LLMBurst))
				r.Post("/user/apikey", userHandler.HandleSetAPIKey)
				r.Post("/chats/{id}/messages", chatHandler.HandleSendMessage)
				r.Post("/chats/{id}/generate-flashcards", chatHandler.HandleGenerateForChat)
				r.Post("/chats/{id}/messages/{messageId}/generate-flashcards", chatHandler.HandleGenerateForMessage)
			})
		})
	})

	return r
}
