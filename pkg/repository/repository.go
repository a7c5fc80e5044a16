package repository

import (
	"context"

	"github.com/m-mizutani/kioku/pkg/model"
)

// Repository is the note store collaborator boundary. All reads return
// snapshots; the core never assumes exclusive access and re-fetches rather
// than caching across calls. Similarity ranking itself happens in-core, so
// the store only needs to expose the similarity-eligible notes.
type Repository interface {
	// PutNote saves a new note
	PutNote(ctx context.Context, note *model.Note) error

	// GetNote retrieves a note by ID, or model.ErrNoteNotFound
	GetNote(ctx context.Context, id model.NoteID) (*model.Note, error)

	// UpdateNote replaces an existing note, or model.ErrNoteNotFound
	UpdateNote(ctx context.Context, note *model.Note) error

	// DeleteNote removes a note by ID, or model.ErrNoteNotFound
	DeleteNote(ctx context.Context, id model.NoteID) error

	// ListNotes retrieves notes ordered by creation time
	ListNotes(ctx context.Context, offset, limit int) ([]*model.Note, error)

	// ListEmbedded retrieves every note that carries an embedding
	ListEmbedded(ctx context.Context) ([]*model.Note, error)

	// ListCategories retrieves the distinct categories in use
	ListCategories(ctx context.Context) ([]string, error)

	// Close releases store resources
	Close() error
}
