package rank

import (
	"context"
	"math"
	"sort"

	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
)

// Cosine returns the cosine similarity between two vectors. A zero-norm
// vector scores 0 against everything.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores candidates against the query embedding and returns the top k
// by descending cosine similarity. Candidates without an embedding are
// excluded. A candidate whose embedding dimension differs from the query is
// skipped and logged as a data integrity warning.
//
// The sort is stable: ties keep the input order. Scoring is pure and
// side-effect free apart from the mismatch warning.
func Rank(ctx context.Context, query []float32, candidates []*model.Note, k int) []*model.ScoredNote {
	if k <= 0 || len(query) == 0 {
		return nil
	}

	scored := make([]*model.ScoredNote, 0, len(candidates))
	for _, note := range candidates {
		if !note.HasEmbedding() {
			continue
		}
		if len(note.Embedding) != len(query) {
			logging.From(ctx).Warn("embedding dimension mismatch, skipping note",
				"note_id", note.ID,
				"note_dim", len(note.Embedding),
				"query_dim", len(query),
			)
			continue
		}

		scored = append(scored, &model.ScoredNote{
			Note:  note,
			Score: Cosine(query, note.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
