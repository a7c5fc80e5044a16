package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/kioku/pkg/adapter"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/service/session"
	"github.com/m-mizutani/kioku/pkg/tool"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
	"google.golang.org/genai"
)

// Agent runs the retrieval pipeline for one conversation: tool selection,
// tool execution, two-stage response generation, and memory update. One
// Agent is bound to one session; concurrent runs on the same session are
// serialized by the session entry's run lock.
type Agent struct {
	llm      adapter.LLM
	executor *tool.Executor
	sessions *session.Registry

	sessionID model.SessionID
}

// NewInput contains parameters for creating an Agent
type NewInput struct {
	LLM      adapter.LLM
	Executor *tool.Executor
	Sessions *session.Registry

	// SessionID is optional; a fresh session is created when empty
	SessionID model.SessionID
}

// New creates an Agent. The session itself is created lazily on the first
// run.
func New(input NewInput) *Agent {
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = model.NewSessionID()
	}

	return &Agent{
		llm:       input.LLM,
		executor:  input.Executor,
		sessions:  input.Sessions,
		sessionID: sessionID,
	}
}

// SessionID returns the session this agent is bound to
func (a *Agent) SessionID() model.SessionID {
	return a.sessionID
}

// Run answers one query and returns a structured response. Every
// documented failure mode still yields a well-formed response; only
// cancellation propagates as an error.
func (a *Agent) Run(ctx context.Context, query string) (*model.AgentResponse, error) {
	entry := a.sessions.GetOrCreate(a.sessionID)
	entry.Acquire()
	defer entry.Release()

	// Debug pseudo-commands bypass the pipeline entirely
	switch strings.TrimSpace(query) {
	case "/history":
		return &model.AgentResponse{
			DataType:  model.DataTypeOther,
			Narrative: entry.Memory.Summary(),
		}, nil
	case "/clear":
		entry.Memory.Clear()
		return &model.AgentResponse{
			DataType:  model.DataTypeOther,
			Narrative: "Conversation history cleared.",
		}, nil
	}

	resp, err := a.run(ctx, entry, query)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Cancellation is not an error condition; nothing was persisted
			return nil, err
		}

		logging.From(ctx).Error("agent run failed", "query", query, "error", err)
		return &model.AgentResponse{
			DataType:   model.DataTypeOther,
			Confidence: 0,
			Narrative:  "Sorry, something went wrong while looking that up. Please try again.",
			Warning:    err.Error(),
		}, nil
	}

	return resp, nil
}

// run walks the pipeline states in order. Memory is saved only after the
// final narrative exists, so an aborted run never leaves a partial turn.
func (a *Agent) run(ctx context.Context, entry *session.Entry, query string) (*model.AgentResponse, error) {
	turns := entry.Memory.Load()

	// Conversational references are answered from memory; retrieval would
	// only produce spurious matches.
	if isConversationalReference(query) {
		narrative := narrateFromMemory(turns)
		entry.Memory.Save(query, narrative)
		return &model.AgentResponse{
			DataType:   model.DataTypeOther,
			Confidence: 0.5,
			Narrative:  narrative,
			Warning:    a.usageWarning(ctx),
		}, nil
	}

	call, err := a.selectTool(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []tool.Result
	if call != nil {
		results, err = a.executor.Execute(ctx, []tool.Call{*call})
		if err != nil {
			return nil, err
		}
	}

	fact, err := a.extract(ctx, query, results)
	if err != nil {
		return nil, err
	}

	narrative := narrate(query, fact)
	refIDs := referencedNoteIDs(results)

	entry.Memory.Save(query, narrative)

	return &model.AgentResponse{
		ExtractedData:    fact.Data,
		DataType:         fact.Type,
		Confidence:       fact.Confidence,
		Narrative:        narrative,
		ReferenceNoteIDs: refIDs,
		SuggestedActions: suggestActions(fact, refIDs),
		Warning:          a.usageWarning(ctx),
	}, nil
}

// RunStreaming runs the same pipeline and yields the narrative in chunks,
// without the structured packaging
func (a *Agent) RunStreaming(ctx context.Context, query string) (<-chan string, error) {
	resp, err := a.Run(ctx, query)
	if err != nil {
		return nil, err
	}

	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, word := range strings.Fields(resp.Narrative) {
			select {
			case ch <- word + " ":
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// ClearMemory empties the conversation memory of this agent's session
func (a *Agent) ClearMemory() {
	a.sessions.GetOrCreate(a.sessionID).Memory.Clear()
}

// HistorySummary returns the buffered conversation as plain text
func (a *Agent) HistorySummary() string {
	return a.sessions.GetOrCreate(a.sessionID).Memory.Summary()
}

// recordUsage overwrites the session's token usage from a model response
func (a *Agent) recordUsage(resp *genai.GenerateContentResponse) {
	if resp == nil || resp.UsageMetadata == nil {
		return
	}
	a.sessions.RecordUsage(a.sessionID, int64(resp.UsageMetadata.TotalTokenCount))
}

// usageWarning returns a caller-facing warning when the session budget is
// near or past its quota
func (a *Agent) usageWarning(ctx context.Context) string {
	usage, err := a.sessions.GetUsage(a.sessionID)
	if err != nil {
		return ""
	}

	switch {
	case usage.Percent > 100:
		logging.From(ctx).Warn("session token quota exceeded",
			"session_id", a.sessionID, "usage", usage.Usage, "quota", usage.Quota)
		return "Session token quota exceeded. Clear the session to continue reliably."
	case usage.Percent >= session.WarnThreshold:
		logging.From(ctx).Warn("session near token quota",
			"session_id", a.sessionID, "percent", usage.Percent)
		return "Session is close to its token limit. Consider clearing the conversation."
	default:
		return ""
	}
}

// referencedNoteIDs collects the note IDs that appear in tool results
func referencedNoteIDs(results []tool.Result) []model.NoteID {
	var ids []model.NoteID
	seen := make(map[model.NoteID]bool)

	addID := func(v any) {
		raw, ok := v.(string)
		if !ok || raw == "" {
			return
		}
		id := model.NoteID(raw)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, result := range results {
		if result.Result == nil {
			continue
		}
		if notes, ok := result.Result["notes"].([]map[string]any); ok {
			for _, note := range notes {
				addID(note["id"])
			}
		}
		if note, ok := result.Result["note"].(map[string]any); ok {
			addID(note["id"])
		}
	}
	return ids
}

// suggestActions derives UI actions from the extraction result and the
// referenced notes
func suggestActions(fact *model.ExtractedFact, refIDs []model.NoteID) []model.Action {
	var actions []model.Action

	if fact.Found() {
		actions = append(actions, model.Action{Type: model.ActionCopy})
		if fact.Type == model.DataTypeEmail || fact.Type == model.DataTypePassword {
			actions = append(actions, model.Action{Type: model.ActionFill})
		}
		if fact.Type == model.DataTypeURL {
			actions = append(actions, model.Action{Type: model.ActionOpenLink})
		}
	}

	for _, id := range refIDs {
		actions = append(actions, model.Action{Type: model.ActionViewNote, NoteID: id})
	}
	return actions
}
