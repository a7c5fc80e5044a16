package rank_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/service/rank"
)

func TestCosineBounds(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2}
	b := []float32{-0.5, 0.1, 0.9}

	score := rank.Cosine(a, b)
	gt.True(t, score >= -1.0 && score <= 1.0)

	// Identical vectors score 1 within floating tolerance
	self := rank.Cosine(a, a)
	gt.True(t, math.Abs(self-1.0) < 1e-9)
}

func TestCosineZeroNorm(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}

	gt.Equal(t, rank.Cosine(zero, v), 0.0)
	gt.Equal(t, rank.Cosine(v, zero), 0.0)
	gt.Equal(t, rank.Cosine(zero, zero), 0.0)
}

func TestCosineOpposite(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	gt.True(t, math.Abs(rank.Cosine(a, b)+1.0) < 1e-9)
}

func newNote(id string, embedding []float32) *model.Note {
	return &model.Note{
		ID:        model.NoteID(id),
		Title:     id,
		Embedding: embedding,
	}
}

func TestRankTopK(t *testing.T) {
	ctx := context.Background()
	query := []float32{1, 0}

	candidates := []*model.Note{
		newNote("low", []float32{0, 1}),      // score 0
		newNote("high", []float32{1, 0}),     // score 1
		newNote("mid", []float32{1, 1}),      // score ~0.707
		newNote("no-embedding", nil),         // excluded
		newNote("negative", []float32{-1, 0}), // score -1
	}

	results := rank.Rank(ctx, query, candidates, 2)
	gt.Equal(t, len(results), 2)
	gt.Equal(t, results[0].Note.ID, model.NoteID("high"))
	gt.Equal(t, results[1].Note.ID, model.NoteID("mid"))
}

func TestRankFewerThanK(t *testing.T) {
	ctx := context.Background()
	query := []float32{1, 0}

	candidates := []*model.Note{
		newNote("a", []float32{1, 0}),
		newNote("no-embedding", nil),
	}

	results := rank.Rank(ctx, query, candidates, 10)
	gt.Equal(t, len(results), 1)
	gt.Equal(t, results[0].Note.ID, model.NoteID("a"))
}

func TestRankDimensionMismatchSkipped(t *testing.T) {
	ctx := context.Background()
	query := []float32{1, 0}

	candidates := []*model.Note{
		newNote("wrong-dim", []float32{1, 0, 0}),
		newNote("ok", []float32{1, 0}),
	}

	results := rank.Rank(ctx, query, candidates, 10)
	gt.Equal(t, len(results), 1)
	gt.Equal(t, results[0].Note.ID, model.NoteID("ok"))
}

func TestRankStableOrder(t *testing.T) {
	ctx := context.Background()
	query := []float32{1, 0}

	// All three candidates tie; input order must survive
	candidates := []*model.Note{
		newNote("first", []float32{1, 0}),
		newNote("second", []float32{2, 0}),
		newNote("third", []float32{3, 0}),
	}

	for range 5 {
		results := rank.Rank(ctx, query, candidates, 3)
		gt.Equal(t, len(results), 3)
		gt.Equal(t, results[0].Note.ID, model.NoteID("first"))
		gt.Equal(t, results[1].Note.ID, model.NoteID("second"))
		gt.Equal(t, results[2].Note.ID, model.NoteID("third"))
	}
}

func TestRankEmptyInput(t *testing.T) {
	ctx := context.Background()

	gt.Equal(t, len(rank.Rank(ctx, []float32{1}, nil, 5)), 0)
	gt.Equal(t, len(rank.Rank(ctx, nil, []*model.Note{newNote("a", []float32{1})}, 5)), 0)
	gt.Equal(t, len(rank.Rank(ctx, []float32{1}, []*model.Note{newNote("a", []float32{1})}, 0)), 0)
}
