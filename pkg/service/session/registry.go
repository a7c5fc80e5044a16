package session

import (
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
)

// DefaultQuota is the default per-session input token quota
const DefaultQuota int64 = 6144

// DefaultClearThreshold is the usage percentage at which callers should
// proactively reset a session
const DefaultClearThreshold = 80.0

// WarnThreshold is the usage percentage at which a near-limit warning is
// surfaced alongside responses
const WarnThreshold = 90.0

// Entry is one live session: model context metadata, conversation memory,
// and the mutex that serializes runs on this session.
type Entry struct {
	Meta   *model.SessionMetadata
	Memory *Memory

	// runMu is held for the whole of one agent run so concurrent runs on
	// the same session never interleave memory writes. It is per session,
	// not global.
	runMu sync.Mutex
}

// Acquire blocks until this entry's run slot is free
func (e *Entry) Acquire() {
	e.runMu.Lock()
}

// Release frees the run slot
func (e *Entry) Release() {
	e.runMu.Unlock()
}

// Usage is a snapshot of a session's token budget
type Usage struct {
	Usage   int64
	Quota   int64
	Percent float64
}

// Registry owns all live sessions, keyed by session ID. Sessions are
// created lazily on first use and destroyed explicitly; there is no idle
// eviction.
type Registry struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*Entry

	quota    int64
	maxPairs int
}

// Option configures a Registry
type Option func(*Registry)

// WithQuota sets the per-session input token quota
func WithQuota(quota int64) Option {
	return func(r *Registry) {
		r.quota = quota
	}
}

// WithMaxPairs sets the conversation memory cap in turn pairs
func WithMaxPairs(maxPairs int) Option {
	return func(r *Registry) {
		r.maxPairs = maxPairs
	}
}

// NewRegistry creates an empty session registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[model.SessionID]*Entry),
		quota:    DefaultQuota,
		maxPairs: DefaultMaxPairs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns the session entry for id, creating it on first use
func (r *Registry) GetOrCreate(id model.SessionID) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.sessions[id]; ok {
		entry.Meta.LastUsedAt = time.Now()
		return entry
	}

	now := time.Now()
	entry := &Entry{
		Meta: &model.SessionMetadata{
			ID:         id,
			CreatedAt:  now,
			LastUsedAt: now,
			InputQuota: r.quota,
		},
		Memory: NewMemory(r.maxPairs),
	}
	r.sessions[id] = entry
	return entry
}

// Get returns the session entry for id, or ErrSessionNotFound
func (r *Registry) Get(id model.SessionID) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrSessionNotFound, "unknown session", goerr.V("session_id", id))
	}
	return entry, nil
}

// Destroy removes one session and releases its memory
func (r *Registry) Destroy(id model.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// DestroyAll removes every session. This is the only teardown sweep;
// callers that never invoke it leak idle sessions.
func (r *Registry) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[model.SessionID]*Entry)
}

// RecordUsage overwrites the session's cumulative token usage. The model
// reports cumulative usage after every call, so this never accumulates.
func (r *Registry) RecordUsage(id model.SessionID, usedTokens int64) {
	entry := r.GetOrCreate(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	entry.Meta.InputUsage = usedTokens
	entry.Meta.LastUsedAt = time.Now()
}

// GetUsage returns the session's current token budget snapshot
func (r *Registry) GetUsage(id model.SessionID) (*Usage, error) {
	entry, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Usage{
		Usage:   entry.Meta.InputUsage,
		Quota:   entry.Meta.InputQuota,
		Percent: entry.Meta.UsagePercent(),
	}, nil
}

// ShouldClear reports whether the session has crossed thresholdPercent of
// its quota and the caller should reset conversation state. Non-positive
// thresholds fall back to DefaultClearThreshold.
func (r *Registry) ShouldClear(id model.SessionID, thresholdPercent float64) bool {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultClearThreshold
	}

	usage, err := r.GetUsage(id)
	if err != nil {
		return false
	}
	return usage.Percent >= thresholdPercent
}
