package usecase

import (
	"strings"

	"character-chat/internal/domain"
)

// buildPromptMessages orders the persona prompt first, prior turns next, and
// the new user message last.
func buildPromptMessages(persona domain.Persona, history []domain.ChatMessage, message string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: strings.TrimSpace(persona.SystemPrompt),
	})

	for _, m := range history {
		if hm, ok := historyToPromptMessage(m); ok {
			messages = append(messages, hm)
		}
	}

	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: message,
	})
	return messages
}

func historyToPromptMessage(m domain.ChatMessage) (domain.ChatMessage, bool) {
	switch m.Role {
	case domain.RoleUser, domain.RoleAssistant:
		return domain.ChatMessage{Role: m.Role, Content: m.Content}, true
	default:
		return domain.ChatMessage{}, false
	}
}
