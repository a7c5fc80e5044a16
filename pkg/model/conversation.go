package model

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single utterance in a conversation, oldest-first
// within a sequence
type ConversationTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
