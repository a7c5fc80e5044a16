package tool

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/adapter"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
)

// DefaultSearchLimit is the search_notes result cap when the call does not
// specify one
const DefaultSearchLimit = 5

// Executor runs tool calls against the note store. Calls in one batch run
// sequentially because mutation tools are order-sensitive; one failed call
// never aborts the batch.
type Executor struct {
	repo     repository.Repository
	llm      adapter.LLM
	registry *Registry

	minSimilarity float64
	searchLimit   int
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithMinSimilarity sets the score floor for search_notes results. The
// default of 0 keeps every ranked result.
func WithMinSimilarity(min float64) ExecutorOption {
	return func(x *Executor) {
		x.minSimilarity = min
	}
}

// WithSearchLimit sets the default search_notes result cap
func WithSearchLimit(limit int) ExecutorOption {
	return func(x *Executor) {
		x.searchLimit = limit
	}
}

// NewExecutor creates a tool executor bound to a note store and an
// embedding provider
func NewExecutor(repo repository.Repository, llm adapter.LLM, registry *Registry, opts ...ExecutorOption) *Executor {
	x := &Executor{
		repo:        repo,
		llm:         llm,
		registry:    registry,
		searchLimit: DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Registry returns the executor's active tool set
func (x *Executor) Registry() *Registry {
	return x.registry
}

// Execute runs the calls in order and returns one Result per call. A
// failing call yields a Result with Error set and execution continues.
// Cancellation aborts the batch and propagates ctx.Err.
func (x *Executor) Execute(ctx context.Context, calls []Call) ([]Result, error) {
	results := make([]Result, 0, len(calls))

	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := x.executeOne(ctx, call)
		if err != nil {
			logging.From(ctx).Warn("tool call failed", "tool", call.Kind, "error", err)
			results = append(results, Result{
				Tool:  string(call.Kind),
				Error: err.Error(),
			})
			continue
		}

		results = append(results, Result{
			Tool:   string(call.Kind),
			Result: data,
		})
	}

	return results, nil
}

func (x *Executor) executeOne(ctx context.Context, call Call) (map[string]any, error) {
	spec, ok := x.registry.Lookup(call.Kind)
	if !ok {
		return nil, goerr.Wrap(model.ErrToolNotFound, "tool is not in the active set",
			goerr.V("tool", call.Kind))
	}

	if err := validateParams(spec, call.Params); err != nil {
		return nil, err
	}

	switch call.Kind {
	case KindSearchNotes:
		return x.searchNotes(ctx, call.Params)
	case KindGetNote:
		return x.getNote(ctx, call.Params)
	case KindListCategories:
		return x.listCategories(ctx)
	case KindCreateNote:
		return x.createNote(ctx, call.Params)
	case KindUpdateNote:
		return x.updateNote(ctx, call.Params)
	case KindDeleteNote:
		return x.deleteNote(ctx, call.Params)
	default:
		return nil, goerr.Wrap(model.ErrToolNotFound, "unknown tool", goerr.V("tool", call.Kind))
	}
}

func (x *Executor) getNote(ctx context.Context, params map[string]any) (map[string]any, error) {
	id := model.NoteID(stringParam(params, "note_id"))

	note, err := x.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNoteNotFound) {
			return map[string]any{
				"success": false,
				"message": "note not found: " + string(id),
			}, nil
		}
		return nil, err
	}

	return map[string]any{"note": noteResult(note, 0, false)}, nil
}

func (x *Executor) listCategories(ctx context.Context) (map[string]any, error) {
	categories, err := x.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return map[string]any{"categories": categories}, nil
}

func (x *Executor) createNote(ctx context.Context, params map[string]any) (map[string]any, error) {
	note := &model.Note{
		Title:    stringParam(params, "title"),
		Body:     stringParam(params, "body"),
		Category: stringParam(params, "category"),
	}

	embedding, err := x.llm.Embedding(ctx, note.Title+"\n"+note.Body)
	if err != nil {
		// The note is still usable via keyword access without an embedding
		logging.From(ctx).Warn("failed to embed new note, saving without embedding", "error", err)
	} else {
		note.Embedding = embedding
	}

	if err := x.repo.PutNote(ctx, note); err != nil {
		return nil, err
	}

	return map[string]any{"note_id": string(note.ID)}, nil
}

func (x *Executor) updateNote(ctx context.Context, params map[string]any) (map[string]any, error) {
	id := model.NoteID(stringParam(params, "note_id"))

	note, err := x.repo.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if title := stringParam(params, "title"); title != "" {
		note.Title = title
		changed = true
	}
	if body := stringParam(params, "body"); body != "" {
		note.Body = body
		changed = true
	}
	if category := stringParam(params, "category"); category != "" {
		note.Category = category
		changed = true
	}

	if changed {
		embedding, err := x.llm.Embedding(ctx, note.Title+"\n"+note.Body)
		if err != nil {
			logging.From(ctx).Warn("failed to re-embed updated note", "note_id", id, "error", err)
		} else {
			note.Embedding = embedding
		}
	}

	if err := x.repo.UpdateNote(ctx, note); err != nil {
		return nil, err
	}

	return map[string]any{"note_id": string(note.ID)}, nil
}

func (x *Executor) deleteNote(ctx context.Context, params map[string]any) (map[string]any, error) {
	id := model.NoteID(stringParam(params, "note_id"))

	if err := x.repo.DeleteNote(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"note_id": string(id), "deleted": true}, nil
}
