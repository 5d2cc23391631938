package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoArrayFound = errors.New("no flashcard array found in response")
	ErrParseFailure = errors.New("failed to parse flashcard array")
)

// FlashcardDraft is one question/answer pair proposed by the model.
type FlashcardDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ExtractFlashcards finds the first balanced JSON array in text that decodes
// as a non-empty list of {question, answer} objects. Candidates are tried in
// order of their opening bracket; a candidate that fails to decode is skipped
// whole, so brackets nested inside it are never tried on their own. An array
// that decodes but holds no cards is returned only when nothing later does
// and no bracket was left open.
func ExtractFlashcards(text string) ([]FlashcardDraft, error) {
	open := strings.IndexByte(text, '[')
	if open < 0 || strings.LastIndexByte(text, ']') < open {
		return nil, ErrNoArrayFound
	}

	var (
		fallback []FlashcardDraft
		hasEmpty bool
		unclosed bool
		lastErr  error
	)

	for start := open; start < len(text); {
		if text[start] != '[' {
			start++
			continue
		}

		end := matchBracket(text, start)
		if end < 0 {
			unclosed = true
			start++
			continue
		}

		var drafts []FlashcardDraft
		if err := json.Unmarshal([]byte(text[start:end+1]), &drafts); err != nil {
			lastErr = err
			start = end + 1
			continue
		}
		if hasCards(drafts) {
			return drafts, nil
		}
		if !hasEmpty {
			fallback, hasEmpty = drafts, true
		}
		start = end + 1
	}

	if hasEmpty && !unclosed {
		if fallback == nil {
			fallback = []FlashcardDraft{}
		}
		return fallback, nil
	}
	if lastErr == nil {
		lastErr = errors.New("unbalanced brackets")
	}
	return nil, fmt.Errorf("%w: %v", ErrParseFailure, lastErr)
}

// hasCards reports whether any draft carries a question or an answer.
func hasCards(drafts []FlashcardDraft) bool {
	for _, d := range drafts {
		if d.Question != "" || d.Answer != "" {
			return true
		}
	}
	return false
}

// matchBracket returns the index of the ']' closing the '[' at start, or -1.
// Brackets inside JSON string literals are ignored.
func matchBracket(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
