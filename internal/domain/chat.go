package domain

import "time"

// Chat roles understood by every provider adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by the handler
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProviderMode selects which completion provider serves a request.
type ProviderMode string

const (
	ProviderOpenAI    ProviderMode = "openai"
	ProviderAnthropic ProviderMode = "anthropic"
	ProviderGemini    ProviderMode = "gemini"
)

// CompletionConfig is the per-call provider configuration.
type CompletionConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// TranscriptEntry is one visible line of a chat session.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"timestamp"`
}

// ChatMessage returns the entry in the shape sent to the completion gateway.
func (e TranscriptEntry) ChatMessage() ChatMessage {
	return ChatMessage{Role: e.Role, Content: e.Content}
}
