package notes

import (
	"context"

	"github.com/m-mizutani/kioku/pkg/model"
)

// Show retrieves a single note by ID
func (u *UseCase) Show(ctx context.Context, id model.NoteID) (*model.Note, error) {
	return u.repo.GetNote(ctx, id)
}

// Delete removes a note by ID
func (u *UseCase) Delete(ctx context.Context, id model.NoteID) error {
	return u.repo.DeleteNote(ctx, id)
}

// Categories lists the distinct categories in use
func (u *UseCase) Categories(ctx context.Context) ([]string, error) {
	return u.repo.ListCategories(ctx)
}
