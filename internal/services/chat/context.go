// File: internal/services/chat/context.go
package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// SystemPrompt opens every full-conversation context.
const SystemPrompt = "You are an AI assistant named Llama Chat, designed to help users with various questions, " +
	"provide explanations, and engage in interactive conversations. You are friendly, informative, and concise " +
	"in your responses. When answering, aim to provide clear, accurate, and helpful information. If you don't " +
	"know the answer or if a question is unclear, ask for clarification or suggest a way to find more " +
	"information. Avoid making up facts, and ensure that your responses align with the user's context and needs."

const roleSeparator = ": "

// TruncateContext drops whole lines from the start of raw until it is at most
// maxChars characters long. A line is never cut; if the newest line alone is
// over budget the result is empty.
func TruncateContext(raw string, maxChars int) string {
	if maxChars < 0 {
		maxChars = 0
	}

	length := utf8.RuneCountInString(raw)
	for length > maxChars {
		idx := strings.IndexByte(raw, '\n')
		if idx < 0 {
			return ""
		}
		// The dropped line plus its newline.
		length -= utf8.RuneCountInString(raw[:idx]) + 1
		raw = raw[idx+1:]
	}
	return raw
}

// ParseTurns splits a transcript into role-tagged turns. Each non-empty line
// is split on the first ": "; lines without the separator, or whose tag is not
// a known role, are skipped.
func ParseTurns(text string) []domain.Turn {
	var turns []domain.Turn
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tag, content, ok := strings.Cut(line, roleSeparator)
		if !ok {
			continue
		}
		role, known := domain.ParseRole(tag)
		if !known {
			continue
		}
		turns = append(turns, domain.Turn{Role: role, Content: strings.TrimSpace(content)})
	}
	return turns
}

// BuildContext produces the full-conversation context: the system turn
// followed by the bounded transcript's turns. Text that contains no tagged
// line at all is a bare utterance and becomes a single user turn.
func BuildContext(raw string, maxChars int) []domain.Turn {
	bounded := TruncateContext(raw, maxChars)

	turns := ParseTurns(bounded)
	if len(turns) == 0 {
		if utterance := strings.TrimSpace(bounded); utterance != "" {
			turns = []domain.Turn{{Role: domain.RoleUser, Content: utterance}}
		}
	}

	out := make([]domain.Turn, 0, len(turns)+1)
	out = append(out, domain.Turn{Role: domain.RoleSystem, Content: SystemPrompt})
	return append(out, turns...)
}

// BuildLastMessageContext is the non-streaming variant: the bounded raw text
// is sent as one user turn with no system turn.
func BuildLastMessageContext(raw string, maxChars int) []domain.Turn {
	bounded := TruncateContext(raw, maxChars)
	if strings.TrimSpace(bounded) == "" {
		return nil
	}
	return []domain.Turn{{Role: domain.RoleUser, Content: bounded}}
}
