package llm

import (
	"strings"
)

const (
	// ChatSystemPrompt is sent with every chat turn.
	ChatSystemPrompt = `You are a helpful tutor. Answer clearly and accurately.
Format every answer in Markdown: use headings, bullet lists, bold for key terms
and fenced code blocks with a language tag for code.`

	titleSystemPrompt = `You name conversations. Reply with a title of at most
six words that summarizes the conversation. Reply with the title only: no
quotes, no punctuation at the end, no explanation.`

	flashcardSystemPrompt = `You create study flashcards from conversations.
Return a JSON array of objects with exactly two string fields, "question" and
"answer". Each question must be answerable from the material alone. Keep
answers short. Return only the JSON array with no surrounding prose.`

	maxTitleRunes  = 80
	titleMaxTokens = 32
)

// ChatRequest builds the request for one chat turn from the full history.
func ChatRequest(history []Message) Request {
	return Request{
		System:   ChatSystemPrompt,
		Messages: history,
	}
}

// TitleRequest builds the request that names a chat after its first exchange.
func TitleRequest(userText, assistantText string) Request {
	var sb strings.Builder
	sb.WriteString("User: ")
	sb.WriteString(userText)
	sb.WriteString("\n\nAssistant: ")
	sb.WriteString(assistantText)

	return Request{
		System:    titleSystemPrompt,
		Messages:  []Message{{Role: "user", Content: sb.String()}},
		MaxTokens: titleMaxTokens,
	}
}

// FlashcardRequest builds the request that turns material into flashcards.
func FlashcardRequest(material string) Request {
	return Request{
		System: flashcardSystemPrompt,
		Messages: []Message{{
			Role:    "user",
			Content: "Create flashcards from the following material:\n\n" + material,
		}},
	}
}

// Transcript renders a conversation as plain text for the flashcard prompt.
func Transcript(history []Message) string {
	var sb strings.Builder
	for i, m := range history {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if m.Role == "assistant" {
			sb.WriteString("Assistant: ")
		} else {
			sb.WriteString("User: ")
		}
		sb.WriteString(m.Content)
	}
	return sb.String()
}

// CleanTitle normalizes a model-produced title. It returns "" when nothing
// usable is left.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimPrefix(title, "Title:")
	title = strings.Trim(title, " \t\"'`*#")
	title = strings.TrimRight(title, ".")
	title = strings.Join(strings.Fields(title), " ")

	if r := []rune(title); len(r) > maxTitleRunes {
		title = strings.TrimSpace(string(r[:maxTitleRunes]))
	}
	return title
}
