package notes

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/service/rank"
)

// SearchOptions contains options for similarity search
type SearchOptions struct {
	Query string
	Limit int
}

// Search finds the notes most similar to the query text:
// 1. Generate an embedding for the query
// 2. Rank every embedded note by cosine similarity
// 3. Return the top results in descending score order
func (u *UseCase) Search(ctx context.Context, opts SearchOptions) ([]*model.ScoredNote, error) {
	if opts.Limit <= 0 {
		opts.Limit = 5
	}

	vector, err := u.llm.Embedding(ctx, opts.Query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query")
	}

	candidates, err := u.repo.ListEmbedded(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list embedded notes")
	}

	return rank.Rank(ctx, vector, candidates, opts.Limit), nil
}
