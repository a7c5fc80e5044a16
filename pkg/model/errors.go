package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrModelUnavailable means the LLM or embedding provider is not ready.
	// Fatal for the current run; the session itself is preserved.
	ErrModelUnavailable = goerr.New("model unavailable")

	// ErrNoteNotFound means the requested note does not exist in the store
	ErrNoteNotFound = goerr.New("note not found")

	// ErrToolNotFound means a tool call named an unknown or inactive tool
	ErrToolNotFound = goerr.New("tool not found")

	// ErrSessionNotFound means the session ID is not registered
	ErrSessionNotFound = goerr.New("session not found")
)
