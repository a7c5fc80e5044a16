package session

import (
	"strings"
	"sync"

	"github.com/m-mizutani/kioku/pkg/model"
)

// DefaultMaxPairs is the conversation memory cap in turn pairs
const DefaultMaxPairs = 10

// Memory is a bounded FIFO buffer of conversation turns. It holds at most
// 2*maxPairs turns; trimming drops from the head so the buffer always
// contains the most recent conversation in order. Memory lives only for the
// process lifetime, tied 1:1 to a session.
type Memory struct {
	mu       sync.Mutex
	maxPairs int
	turns    []model.ConversationTurn
}

// NewMemory creates a conversation memory capped at maxPairs turn pairs.
// Non-positive maxPairs falls back to DefaultMaxPairs.
func NewMemory(maxPairs int) *Memory {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}
	return &Memory{maxPairs: maxPairs}
}

// Load returns a copy of the buffered turns, oldest first
func (m *Memory) Load() []model.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := make([]model.ConversationTurn, len(m.turns))
	copy(turns, m.turns)
	return turns
}

// Save appends one user/assistant turn pair and trims to the cap
func (m *Memory) Save(userText, assistantText string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns,
		model.ConversationTurn{Role: model.RoleUser, Text: userText},
		model.ConversationTurn{Role: model.RoleAssistant, Text: assistantText},
	)

	if max := 2 * m.maxPairs; len(m.turns) > max {
		m.turns = m.turns[len(m.turns)-max:]
	}
}

// Clear empties the buffer immediately
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

// Len returns the number of buffered turns
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Summary renders the buffered turns as a plain text transcript for the
// /history pseudo-command
func (m *Memory) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.turns) == 0 {
		return "No conversation history yet."
	}

	var sb strings.Builder
	for _, turn := range m.turns {
		sb.WriteString(string(turn.Role))
		sb.WriteString(": ")
		sb.WriteString(turn.Text)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
