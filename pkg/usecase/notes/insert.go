package notes

import (
	"context"
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
)

// InsertInput contains the fields of a new note
type InsertInput struct {
	Title    string
	Body     string
	Category string
}

// Insert creates a new note and embeds it for similarity search. A failed
// embedding is a warning, not an error: the note is saved without one and
// stays reachable by ID and listing.
func (u *UseCase) Insert(ctx context.Context, input InsertInput) (*model.Note, error) {
	if input.Title == "" {
		return nil, goerr.New("note title is required")
	}

	note := &model.Note{
		ID:       model.NewNoteID(),
		Title:    input.Title,
		Body:     input.Body,
		Category: input.Category,
	}

	embedding, err := u.llm.Embedding(ctx, note.Title+"\n"+note.Body)
	if err != nil {
		logging.From(ctx).Warn("failed to embed note, saving without embedding",
			"note_id", note.ID, "error", err)
	} else {
		note.Embedding = embedding
	}

	if err := u.repo.PutNote(ctx, note); err != nil {
		return nil, goerr.Wrap(err, "failed to save note")
	}

	return note, nil
}

// importedNote is the JSON shape accepted by Import
type importedNote struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// Import bulk-loads notes from a JSON array. Embeddings for all notes are
// generated concurrently in one batch before any note is saved.
func (u *UseCase) Import(ctx context.Context, r io.Reader) ([]*model.Note, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read import data")
	}

	var imported []importedNote
	if err := json.Unmarshal(data, &imported); err != nil {
		return nil, goerr.Wrap(err, "failed to parse import data")
	}
	if len(imported) == 0 {
		return nil, nil
	}

	texts := make([]string, len(imported))
	for i, in := range imported {
		texts[i] = in.Title + "\n" + in.Body
	}

	vectors, err := u.llm.EmbeddingBatch(ctx, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed imported notes")
	}

	saved := make([]*model.Note, 0, len(imported))
	for i, in := range imported {
		note := &model.Note{
			ID:        model.NewNoteID(),
			Title:     in.Title,
			Body:      in.Body,
			Category:  in.Category,
			Embedding: vectors[i],
		}
		if err := u.repo.PutNote(ctx, note); err != nil {
			return saved, goerr.Wrap(err, "failed to save imported note", goerr.V("title", in.Title))
		}
		saved = append(saved, note)
	}

	return saved, nil
}
