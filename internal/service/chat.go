package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cardchat/cardchat-go/internal/llm"
	"github.com/cardchat/cardchat-go/internal/model"
	"github.com/cardchat/cardchat-go/internal/repository"
)

// ChatService handles chats, their messages and the chat turn with the LLM.
type ChatService struct {
	chats *repository.ChatRepository
	decks *repository.DeckRepository
	users *UserService
	llm   Completer
	log   *zap.Logger
	now   func() int64
}

// NewChatService creates a new ChatService.
func NewChatService(chats *repository.ChatRepository, decks *repository.DeckRepository, users *UserService, completer Completer, log *zap.Logger) *ChatService {
	return &ChatService{
		chats: chats,
		decks: decks,
		users: users,
		llm:   completer,
		log:   log,
		now:   unixNow,
	}
}

// List returns the user's chats, most recently active first.
func (s *ChatService) List(ctx context.Context, userID int64) ([]model.Chat, error) {
	return s.chats.ListByUser(ctx, userID)
}

// Create starts an empty chat.
func (s *ChatService) Create(ctx context.Context, userID int64, req model.CreateChatRequest) (model.Chat, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = model.PlaceholderChatTitle
	}

	now := s.now()
	chat := model.Chat{UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	if err := s.chats.Create(ctx, &chat); err != nil {
		return model.Chat{}, err
	}
	return chat, nil
}

// Get returns a chat with all its messages.
func (s *ChatService) Get(ctx context.Context, userID, chatID int64) (model.ChatDetailResponse, error) {
	chat, err := s.chats.GetByID(ctx, userID, chatID)
	if err != nil {
		return model.ChatDetailResponse{}, translate(err)
	}

	msgs, err := s.chats.ListMessages(ctx, chat.ID)
	if err != nil {
		return model.ChatDetailResponse{}, err
	}

	return model.ChatDetailResponse{Chat: *chat, Messages: msgs}, nil
}

// Rename changes a chat's title.
func (s *ChatService) Rename(ctx context.Context, userID, chatID int64, req model.UpdateChatRequest) (model.Chat, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = model.PlaceholderChatTitle
	}

	if err := s.chats.UpdateTitle(ctx, userID, chatID, title, s.now()); err != nil {
		return model.Chat{}, translate(err)
	}

	chat, err := s.chats.GetByID(ctx, userID, chatID)
	if err != nil {
		return model.Chat{}, translate(err)
	}
	return *chat, nil
}

// Delete removes a chat and its messages. A deck generated from it survives.
func (s *ChatService) Delete(ctx context.Context, userID, chatID int64) error {
	return translate(s.chats.Delete(ctx, userID, chatID))
}

// Messages returns a chat's messages in order.
func (s *ChatService) Messages(ctx context.Context, userID, chatID int64) ([]model.Message, error) {
	if _, err := s.chats.GetByID(ctx, userID, chatID); err != nil {
		return nil, translate(err)
	}
	return s.chats.ListMessages(ctx, chatID)
}

// SendMessage runs one chat turn: the user message is stored, the whole
// history goes to the LLM and the reply is stored. After the first exchange
// the chat is titled and its deck is created; failures there are logged only.
// Steps already done are not undone when a later one fails.
func (s *ChatService) SendMessage(ctx context.Context, userID, chatID int64, req model.SendMessageRequest) (model.SendMessageResponse, error) {
	chat, err := s.chats.GetByID(ctx, userID, chatID)
	if err != nil {
		return model.SendMessageResponse{}, translate(err)
	}

	apiKey, err := s.users.VendorKey(ctx, userID)
	if err != nil {
		return model.SendMessageResponse{}, err
	}

	userMsg := model.Message{ChatID: chat.ID, Role: model.RoleUser, Content: req.Content, CreatedAt: s.now()}
	if err := s.chats.CreateMessage(ctx, &userMsg); err != nil {
		return model.SendMessageResponse{}, fmt.Errorf("storing user message: %w", err)
	}

	history, err := s.chats.ListMessages(ctx, chat.ID)
	if err != nil {
		return model.SendMessageResponse{}, fmt.Errorf("loading history: %w", err)
	}

	reply, err := s.llm.Complete(ctx, apiKey, llm.ChatRequest(toLLMMessages(history)))
	if err != nil {
		return model.SendMessageResponse{}, translateLLM(err)
	}

	assistantMsg := model.Message{ChatID: chat.ID, Role: model.RoleAssistant, Content: reply, CreatedAt: s.now()}
	if err := s.chats.CreateMessage(ctx, &assistantMsg); err != nil {
		return model.SendMessageResponse{}, fmt.Errorf("storing assistant message: %w", err)
	}

	if err := s.chats.Touch(ctx, chat.ID, s.now()); err != nil {
		return model.SendMessageResponse{}, translate(err)
	}

	if firstExchange(history) {
		s.afterFirstExchange(ctx, apiKey, chat, userMsg.Content, reply)
	}

	updated, err := s.chats.GetByID(ctx, userID, chat.ID)
	if err != nil {
		return model.SendMessageResponse{}, translate(err)
	}

	return model.SendMessageResponse{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Chat:             *updated,
	}, nil
}

func (s *ChatService) afterFirstExchange(ctx context.Context, apiKey string, chat *model.Chat, userText, reply string) {
	if chat.Title != model.PlaceholderChatTitle {
		return
	}

	log := s.log.With(zap.Int64("chat_id", chat.ID), zap.Int64("user_id", chat.UserID))

	raw, err := s.llm.Complete(ctx, apiKey, llm.TitleRequest(userText, reply))
	switch {
	case err != nil:
		log.Warn("chat title generation failed", zap.Error(err))
	case llm.CleanTitle(raw) == "":
		log.Warn("chat title generation returned nothing usable")
	default:
		title := llm.CleanTitle(raw)
		if err := s.chats.UpdateTitle(ctx, chat.UserID, chat.ID, title, s.now()); err != nil {
			log.Warn("chat title update failed", zap.Error(err))
		} else {
			chat.Title = title
		}
	}

	if _, err := ensureChatDeck(ctx, s.decks, chat, s.now()); err != nil {
		log.Warn("chat deck creation failed", zap.Error(err))
	}
}

// firstExchange reports whether history holds no assistant reply yet.
func firstExchange(history []model.Message) bool {
	for _, m := range history {
		if m.Role == model.RoleAssistant {
			return false
		}
	}
	return true
}

func toLLMMessages(msgs []model.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
