package notes

import (
	"github.com/m-mizutani/kioku/pkg/adapter"
	"github.com/m-mizutani/kioku/pkg/repository"
)

// UseCase provides note management operations for the CLI
type UseCase struct {
	repo repository.Repository
	llm  adapter.LLM
}

// New creates a new notes UseCase instance
func New(repo repository.Repository, llm adapter.LLM) *UseCase {
	return &UseCase{
		repo: repo,
		llm:  llm,
	}
}
