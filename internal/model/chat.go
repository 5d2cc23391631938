package model

// PlaceholderChatTitle is the title a chat carries until one is generated.
const PlaceholderChatTitle = "New Chat"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is a conversation owned by one user.
type Chat struct {
	ID        int64  `db:"id" json:"id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	Title     string `db:"title" json:"title"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
	UpdatedAt int64  `db:"updated_at" json:"updated_at"`
}

// Message is a single turn in a chat.
type Message struct {
	ID        int64  `db:"id" json:"id"`
	ChatID    int64  `db:"chat_id" json:"chat_id"`
	Role      string `db:"role" json:"role"`
	Content   string `db:"content" json:"content"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

// CreateChatRequest creates a chat. An empty title becomes the placeholder.
type CreateChatRequest struct {
	Title string `json:"title" validate:"max=200"`
}

// UpdateChatRequest renames a chat.
type UpdateChatRequest struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
}

// SendMessageRequest is a user turn.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=32000"`
}

// ChatDetailResponse is a chat together with its messages.
type ChatDetailResponse struct {
	Chat
	Messages []Message `json:"messages"`
}

// SendMessageResponse is the result of one chat turn.
type SendMessageResponse struct {
	UserMessage      Message `json:"user_message"`
	AssistantMessage Message `json:"assistant_message"`
	Chat             Chat    `json:"chat"`
}
