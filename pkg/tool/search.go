package tool

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/service/rank"
)

// searchNotes embeds the query, ranks the embedded notes, drops results
// below the similarity floor, and returns them with whitespace-normalized
// content.
func (x *Executor) searchNotes(ctx context.Context, params map[string]any) (map[string]any, error) {
	query := stringParam(params, "query")
	limit := intParam(params, "limit", x.searchLimit)
	if limit <= 0 {
		limit = x.searchLimit
	}

	embedding, err := x.llm.Embedding(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query")
	}

	candidates, err := x.repo.ListEmbedded(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list embedded notes")
	}

	scored := rank.Rank(ctx, embedding, candidates, limit)

	notes := make([]map[string]any, 0, len(scored))
	for _, s := range scored {
		if s.Score < x.minSimilarity {
			continue
		}
		notes = append(notes, noteResult(s.Note, s.Score, true))
	}

	return map[string]any{"notes": notes}, nil
}

// noteResult flattens a note into a tool result map. withScore adds the
// similarity field for search results.
func noteResult(note *model.Note, score float64, withScore bool) map[string]any {
	result := map[string]any{
		"id":         string(note.ID),
		"title":      note.Title,
		"content":    normalizeWhitespace(note.Body),
		"category":   note.Category,
		"created_at": note.CreatedAt.Format(time.RFC3339),
		"updated_at": note.UpdatedAt.Format(time.RFC3339),
	}
	if withScore {
		result["similarity"] = score
	}
	return result
}

// normalizeWhitespace collapses runs of whitespace into single spaces
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
