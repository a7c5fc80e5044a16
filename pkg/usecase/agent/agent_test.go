package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
	"github.com/m-mizutani/kioku/pkg/service/session"
	"github.com/m-mizutani/kioku/pkg/tool"
	"github.com/m-mizutani/kioku/pkg/usecase/agent"
	"google.golang.org/genai"
)

// scriptedLLM replays a fixed sequence of generation replies and a fixed
// embedding vector
type scriptedLLM struct {
	replies   []string
	calls     int
	tokens    int32
	embedding []float32
	genErr    error
}

func (m *scriptedLLM) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.genErr != nil {
		return nil, m.genErr
	}
	if m.calls >= len(m.replies) {
		return nil, errors.New("unexpected generation call")
	}
	text := m.replies[m.calls]
	m.calls++

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
	if m.tokens > 0 {
		resp.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
			TotalTokenCount: m.tokens,
		}
	}
	return resp, nil
}

func (m *scriptedLLM) Embedding(ctx context.Context, text string) ([]float32, error) {
	if m.embedding == nil {
		return nil, errors.New("no embedding scripted")
	}
	return m.embedding, nil
}

func (m *scriptedLLM) EmbeddingBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vec, err := m.Embedding(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

type testEnv struct {
	agent    *agent.Agent
	repo     repository.Repository
	sessions *session.Registry
	llm      *scriptedLLM
}

func newTestEnv(t *testing.T, llm *scriptedLLM, opts ...session.Option) *testEnv {
	t.Helper()
	ctx := context.Background()

	policy, err := tool.NewPolicy(ctx, "", false)
	gt.NoError(t, err)

	repo := repository.NewMemory()
	executor := tool.NewExecutor(repo, llm, tool.NewRegistry(ctx, policy))
	sessions := session.NewRegistry(opts...)

	return &testEnv{
		agent: agent.New(agent.NewInput{
			LLM:      llm,
			Executor: executor,
			Sessions: sessions,
		}),
		repo:     repo,
		sessions: sessions,
		llm:      llm,
	}
}

func putNote(t *testing.T, env *testEnv, note *model.Note) model.NoteID {
	t.Helper()
	gt.NoError(t, env.repo.PutNote(context.Background(), note))
	return note.ID
}

func TestRunPasswordLookup(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		replies:   []string{"search_notes:netflix password", "S3cr3t!"},
		embedding: []float32{1, 0},
	}
	env := newTestEnv(t, llm)

	noteID := putNote(t, env, &model.Note{
		Title:     "Netflix account",
		Body:      "email: me@example.com\npassword: S3cr3t!",
		Category:  "subscriptions",
		Embedding: []float32{1, 0},
	})

	resp, err := env.agent.Run(ctx, "what's my netflix password?")
	gt.NoError(t, err)

	// Extraction output is verbatim; narrative phrasing never touches it
	gt.Equal(t, resp.ExtractedData, "S3cr3t!")
	gt.Equal(t, resp.DataType, model.DataTypePassword)
	gt.Equal(t, resp.Confidence, 0.95)
	gt.Equal(t, resp.Narrative, "Here's your Netflix password.")
	gt.Equal(t, resp.ReferenceNoteIDs, []model.NoteID{noteID})
	gt.Equal(t, resp.Warning, "")

	gt.A(t, resp.SuggestedActions).
		Has(model.Action{Type: model.ActionCopy}).
		Has(model.Action{Type: model.ActionFill}).
		Has(model.Action{Type: model.ActionViewNote, NoteID: noteID})

	gt.Equal(t, llm.calls, 2)

	entry, err := env.sessions.Get(env.agent.SessionID())
	gt.NoError(t, err)
	turns := entry.Memory.Load()
	gt.Equal(t, len(turns), 2)
	gt.Equal(t, turns[0].Text, "what's my netflix password?")
	gt.Equal(t, turns[1].Text, "Here's your Netflix password.")
}

func TestRunConversationalReference(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{}
	env := newTestEnv(t, llm)

	entry := env.sessions.GetOrCreate(env.agent.SessionID())
	entry.Memory.Save("what's my netflix password?", "Here's your Netflix password.")

	resp, err := env.agent.Run(ctx, "what was my last question?")
	gt.NoError(t, err)

	// Memory answers directly; no model or tool round trip
	gt.Equal(t, llm.calls, 0)
	gt.Equal(t, resp.Confidence, 0.5)
	gt.S(t, resp.Narrative).Contains("what's my netflix password?")
	gt.Equal(t, resp.ExtractedData, "")

	turns := entry.Memory.Load()
	gt.Equal(t, len(turns), 4)
	gt.Equal(t, turns[2].Text, "what was my last question?")
}

func TestRunConversationalReferenceEmptyMemory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &scriptedLLM{})

	resp, err := env.agent.Run(ctx, "what did I just ask?")
	gt.NoError(t, err)
	gt.Equal(t, resp.Narrative, "We haven't talked about anything yet in this conversation.")
}

func TestRunUnparseableSelection(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{replies: []string{"I think you should search your notes"}}
	env := newTestEnv(t, llm)

	resp, err := env.agent.Run(ctx, "what's my wifi password?")
	gt.NoError(t, err)

	// Unparseable selection degrades to no retrieval, which also skips the
	// extraction call
	gt.Equal(t, llm.calls, 1)
	gt.Equal(t, resp.ExtractedData, "")
	gt.Equal(t, resp.Confidence, 0.5)
	gt.Equal(t, resp.Narrative, "I couldn't find that in your notes.")
	gt.Equal(t, len(resp.SuggestedActions), 0)
}

func TestRunSelectionNone(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{replies: []string{"none"}}
	env := newTestEnv(t, llm)

	resp, err := env.agent.Run(ctx, "hello there")
	gt.NoError(t, err)
	gt.Equal(t, llm.calls, 1)
	gt.Equal(t, resp.ExtractedData, "")
	gt.Equal(t, resp.Narrative, "I couldn't find that in your notes.")
}

func TestRunExtractionNull(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		replies:   []string{"search_notes:dentist phone", "null"},
		embedding: []float32{1, 0},
	}
	env := newTestEnv(t, llm)

	noteID := putNote(t, env, &model.Note{
		Title:     "Dentist",
		Body:      "Dr. Smith, open weekdays",
		Embedding: []float32{1, 0},
	})

	resp, err := env.agent.Run(ctx, "what's the dentist's phone number?")
	gt.NoError(t, err)

	gt.Equal(t, resp.ExtractedData, "")
	gt.Equal(t, resp.Confidence, 0.5)
	gt.Equal(t, resp.Narrative, "I couldn't find that in your notes.")

	// The searched notes are still referenced even without an extraction
	gt.Equal(t, resp.ReferenceNoteIDs, []model.NoteID{noteID})
	gt.Equal(t, resp.SuggestedActions, []model.Action{
		{Type: model.ActionViewNote, NoteID: noteID},
	})
}

func TestRunModelUnavailable(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{genErr: errors.New("backend down")}
	env := newTestEnv(t, llm)

	resp, err := env.agent.Run(ctx, "what's my netflix password?")
	gt.NoError(t, err)

	// Failure still yields a well-formed response with the cause surfaced
	gt.Equal(t, resp.Confidence, 0.0)
	gt.S(t, resp.Narrative).Contains("something went wrong")
	gt.NotEqual(t, resp.Warning, "")

	// No partial turn was persisted
	entry, err := env.sessions.Get(env.agent.SessionID())
	gt.NoError(t, err)
	gt.Equal(t, entry.Memory.Len(), 0)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{genErr: context.Canceled}
	env := newTestEnv(t, llm)

	resp, err := env.agent.Run(ctx, "what's my netflix password?")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, context.Canceled))
	gt.Nil(t, resp)

	entry, getErr := env.sessions.Get(env.agent.SessionID())
	gt.NoError(t, getErr)
	gt.Equal(t, entry.Memory.Len(), 0)
}

func TestRunUsageWarnings(t *testing.T) {
	ctx := context.Background()

	llm := &scriptedLLM{
		replies: []string{"none"},
		tokens:  950,
	}
	env := newTestEnv(t, llm, session.WithQuota(1000))

	resp, err := env.agent.Run(ctx, "anything")
	gt.NoError(t, err)
	gt.S(t, resp.Warning).Contains("close to its token limit")

	llm.replies = []string{"none"}
	llm.calls = 0
	llm.tokens = 1100

	resp, err = env.agent.Run(ctx, "anything else")
	gt.NoError(t, err)
	gt.S(t, resp.Warning).Contains("quota exceeded")
}

func TestRunPseudoCommands(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{
		replies:   []string{"search_notes:netflix password", "S3cr3t!"},
		embedding: []float32{1, 0},
	}
	env := newTestEnv(t, llm)

	resp, err := env.agent.Run(ctx, "/history")
	gt.NoError(t, err)
	gt.Equal(t, resp.Narrative, "No conversation history yet.")

	putNote(t, env, &model.Note{
		Title:     "Netflix account",
		Body:      "password: S3cr3t!",
		Embedding: []float32{1, 0},
	})
	_, err = env.agent.Run(ctx, "what's my netflix password?")
	gt.NoError(t, err)

	resp, err = env.agent.Run(ctx, "/history")
	gt.NoError(t, err)
	gt.S(t, resp.Narrative).Contains("user: what's my netflix password?")

	resp, err = env.agent.Run(ctx, "/clear")
	gt.NoError(t, err)
	gt.Equal(t, resp.Narrative, "Conversation history cleared.")

	resp, err = env.agent.Run(ctx, "/history")
	gt.NoError(t, err)
	gt.Equal(t, resp.Narrative, "No conversation history yet.")
}

func TestRunStreaming(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{replies: []string{"none"}}
	env := newTestEnv(t, llm)

	ch, err := env.agent.RunStreaming(ctx, "anything")
	gt.NoError(t, err)

	var sb strings.Builder
	for chunk := range ch {
		sb.WriteString(chunk)
	}
	gt.Equal(t, strings.TrimSpace(sb.String()), "I couldn't find that in your notes.")
}

func TestParseSelection(t *testing.T) {
	cases := []struct {
		name   string
		line   string
		ok     bool
		kind   tool.Kind
		params map[string]any
	}{
		{
			name:   "search",
			line:   "search_notes:netflix password",
			ok:     true,
			kind:   tool.KindSearchNotes,
			params: map[string]any{"query": "netflix password"},
		},
		{
			name:   "get note",
			line:   "get_note:abc-123",
			ok:     true,
			kind:   tool.KindGetNote,
			params: map[string]any{"note_id": "abc-123"},
		},
		{
			name:   "categories ignores argument",
			line:   "list_categories:all",
			ok:     true,
			kind:   tool.KindListCategories,
			params: map[string]any{},
		},
		{
			name: "surrounding whitespace",
			line: "  search_notes:wifi  ",
			ok:   true,
			kind: tool.KindSearchNotes,
			params: map[string]any{
				"query": "wifi",
			},
		},
		{name: "none", line: "none", ok: false},
		{name: "empty", line: "", ok: false},
		{name: "prose", line: "I will search the notes", ok: false},
		{name: "mutation not selectable", line: "delete_note:abc", ok: false},
		{name: "missing argument", line: "search_notes:", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call, ok := agent.ParseSelection(tc.line)
			gt.Equal(t, ok, tc.ok)
			if !tc.ok {
				gt.Nil(t, call)
				return
			}
			gt.Equal(t, call.Kind, tc.kind)
			gt.Equal(t, call.Params, tc.params)
		})
	}
}
