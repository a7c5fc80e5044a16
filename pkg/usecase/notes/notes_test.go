package notes_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
	"github.com/m-mizutani/kioku/pkg/usecase/notes"
	"google.golang.org/genai"
)

type stubLLM struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
}

func (s *stubLLM) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubLLM) Embedding(ctx context.Context, text string) ([]float32, error) {
	return s.embedFunc(ctx, text)
}

func (s *stubLLM) EmbeddingBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.embedFunc(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func fixedEmbedding(vec []float32) *stubLLM {
	return &stubLLM{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return vec, nil
		},
	}
}

func TestInsert(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := notes.New(repo, fixedEmbedding([]float32{1, 0}))

	note, err := uc.Insert(ctx, notes.InsertInput{
		Title:    "Netflix account",
		Body:     "password: S3cr3t!",
		Category: "subscriptions",
	})
	gt.NoError(t, err)
	gt.NotEqual(t, note.ID, model.NoteID(""))
	gt.True(t, note.HasEmbedding())

	stored, err := repo.GetNote(ctx, note.ID)
	gt.NoError(t, err)
	gt.Equal(t, stored.Title, "Netflix account")
}

func TestInsertRequiresTitle(t *testing.T) {
	ctx := context.Background()
	uc := notes.New(repository.NewMemory(), fixedEmbedding([]float32{1, 0}))

	_, err := uc.Insert(ctx, notes.InsertInput{Body: "no title"})
	gt.Error(t, err)
}

func TestInsertEmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := notes.New(repo, &stubLLM{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedding backend down")
		},
	})

	note, err := uc.Insert(ctx, notes.InsertInput{Title: "Offline note"})
	gt.NoError(t, err)
	gt.False(t, note.HasEmbedding())

	stored, err := repo.GetNote(ctx, note.ID)
	gt.NoError(t, err)
	gt.Equal(t, stored.Title, "Offline note")
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := notes.New(repo, fixedEmbedding([]float32{1, 0}))

	input := `[
		{"title": "Wifi", "body": "pass: hunter2", "category": "home"},
		{"title": "Dentist", "body": "Dr. Smith"}
	]`

	saved, err := uc.Import(ctx, strings.NewReader(input))
	gt.NoError(t, err)
	gt.Equal(t, len(saved), 2)
	gt.Equal(t, saved[0].Title, "Wifi")
	gt.Equal(t, saved[0].Category, "home")
	gt.True(t, saved[0].HasEmbedding())

	all, err := repo.ListNotes(ctx, 0, 0)
	gt.NoError(t, err)
	gt.Equal(t, len(all), 2)
}

func TestImportInvalidJSON(t *testing.T) {
	ctx := context.Background()
	uc := notes.New(repository.NewMemory(), fixedEmbedding([]float32{1, 0}))

	_, err := uc.Import(ctx, strings.NewReader("not json"))
	gt.Error(t, err)
}

func TestImportEmpty(t *testing.T) {
	ctx := context.Background()
	uc := notes.New(repository.NewMemory(), fixedEmbedding([]float32{1, 0}))

	saved, err := uc.Import(ctx, strings.NewReader("[]"))
	gt.NoError(t, err)
	gt.Equal(t, len(saved), 0)
}

func TestListWithCategory(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := notes.New(repo, fixedEmbedding([]float32{1, 0}))

	gt.NoError(t, repo.PutNote(ctx, &model.Note{Title: "a", Category: "work"}))
	gt.NoError(t, repo.PutNote(ctx, &model.Note{Title: "b", Category: "home"}))
	gt.NoError(t, repo.PutNote(ctx, &model.Note{Title: "c", Category: "work"}))

	all, err := uc.List(ctx, notes.ListOptions{})
	gt.NoError(t, err)
	gt.Equal(t, len(all), 3)

	work, err := uc.List(ctx, notes.ListOptions{Category: "work"})
	gt.NoError(t, err)
	gt.Equal(t, len(work), 2)
	for _, note := range work {
		gt.Equal(t, note.Category, "work")
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := notes.New(repo, fixedEmbedding([]float32{1, 0}))

	gt.NoError(t, repo.PutNote(ctx, &model.Note{Title: "close", Embedding: []float32{1, 0}}))
	gt.NoError(t, repo.PutNote(ctx, &model.Note{Title: "far", Embedding: []float32{0, 1}}))
	gt.NoError(t, repo.PutNote(ctx, &model.Note{Title: "unembedded"}))

	results, err := uc.Search(ctx, notes.SearchOptions{Query: "anything", Limit: 2})
	gt.NoError(t, err)
	gt.Equal(t, len(results), 2)
	gt.Equal(t, results[0].Note.Title, "close")
	gt.True(t, results[0].Score > results[1].Score)
}

func TestShowAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	uc := notes.New(repo, fixedEmbedding([]float32{1, 0}))

	note := &model.Note{Title: "temp"}
	gt.NoError(t, repo.PutNote(ctx, note))

	got, err := uc.Show(ctx, note.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Title, "temp")

	gt.NoError(t, uc.Delete(ctx, note.ID))
	_, err = uc.Show(ctx, note.ID)
	gt.True(t, errors.Is(err, model.ErrNoteNotFound))
}
