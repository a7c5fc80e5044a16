package model

import (
	"time"

	"github.com/google/uuid"
)

type NoteID string

// NewNoteID generates a new unique NoteID
func NewNoteID() NoteID {
	return NoteID(uuid.New().String())
}

// Note is a read snapshot of a stored note. The note store owns the
// persistent record; this core only reads copies and never mutates them in
// place.
type Note struct {
	ID       NoteID `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`

	// Embedding is empty for notes that have not been embedded yet. Such
	// notes are excluded from vector search but still reachable by ID.
	Embedding []float32 `json:"embedding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasEmbedding reports whether the note is eligible for similarity ranking
func (n *Note) HasEmbedding() bool {
	return len(n.Embedding) > 0
}

// ScoredNote pairs a note with its cosine similarity to a query vector.
// Produced per query, never persisted.
type ScoredNote struct {
	Note  *Note
	Score float64
}
