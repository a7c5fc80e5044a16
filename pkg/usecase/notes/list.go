package notes

import (
	"context"

	"github.com/m-mizutani/kioku/pkg/model"
)

// ListOptions contains options for listing notes
type ListOptions struct {
	Category string
	Offset   int
	Limit    int
}

// List retrieves notes, optionally filtered by category
func (u *UseCase) List(ctx context.Context, opts ListOptions) ([]*model.Note, error) {
	notes, err := u.repo.ListNotes(ctx, opts.Offset, opts.Limit)
	if err != nil {
		return nil, err
	}

	if opts.Category == "" {
		return notes, nil
	}

	filtered := make([]*model.Note, 0, len(notes))
	for _, note := range notes {
		if note.Category == opts.Category {
			filtered = append(filtered, note)
		}
	}
	return filtered, nil
}
