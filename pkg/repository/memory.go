package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
)

// memoryRepo is a map-backed Repository for ephemeral runs and tests
type memoryRepo struct {
	mu    sync.RWMutex
	notes map[model.NoteID]*model.Note
}

// NewMemory creates an in-memory note store
func NewMemory() Repository {
	return &memoryRepo{
		notes: make(map[model.NoteID]*model.Note),
	}
}

func cloneNote(n *model.Note) *model.Note {
	c := *n
	if n.Embedding != nil {
		c.Embedding = make([]float32, len(n.Embedding))
		copy(c.Embedding, n.Embedding)
	}
	return &c
}

func (r *memoryRepo) PutNote(ctx context.Context, note *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if note.ID == "" {
		note.ID = model.NewNoteID()
	}
	now := time.Now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	r.notes[note.ID] = cloneNote(note)
	return nil
}

func (r *memoryRepo) GetNote(ctx context.Context, id model.NoteID) (*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNoteNotFound, "no such note", goerr.V("note_id", id))
	}
	return cloneNote(note), nil
}

func (r *memoryRepo) UpdateNote(ctx context.Context, note *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.notes[note.ID]
	if !ok {
		return goerr.Wrap(model.ErrNoteNotFound, "no such note", goerr.V("note_id", note.ID))
	}

	note.CreatedAt = existing.CreatedAt
	note.UpdatedAt = time.Now()
	r.notes[note.ID] = cloneNote(note)
	return nil
}

func (r *memoryRepo) DeleteNote(ctx context.Context, id model.NoteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[id]; !ok {
		return goerr.Wrap(model.ErrNoteNotFound, "no such note", goerr.V("note_id", id))
	}
	delete(r.notes, id)
	return nil
}

func (r *memoryRepo) list() []*model.Note {
	notes := make([]*model.Note, 0, len(r.notes))
	for _, note := range r.notes {
		notes = append(notes, cloneNote(note))
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].ID < notes[j].ID
		}
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes
}

func (r *memoryRepo) ListNotes(ctx context.Context, offset, limit int) ([]*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := r.list()
	if offset >= len(notes) {
		return nil, nil
	}
	notes = notes[offset:]
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

func (r *memoryRepo) ListEmbedded(ctx context.Context) ([]*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var notes []*model.Note
	for _, note := range r.list() {
		if note.HasEmbedding() {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

func (r *memoryRepo) ListCategories(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, note := range r.notes {
		if note.Category == "" || seen[note.Category] {
			continue
		}
		seen[note.Category] = true
		categories = append(categories, note.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *memoryRepo) Close() error {
	return nil
}
