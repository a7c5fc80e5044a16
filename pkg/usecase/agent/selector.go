package agent

import (
	"context"
	"fmt"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/tool"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
	"google.golang.org/genai"
)

// conversationalPatterns match queries that must be answered from memory
// rather than retrieval ("what did I just ask")
var conversationalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what (did|was) (i|my) (just )?(ask|say|question)`),
	regexp.MustCompile(`(?i)what was my (last|previous) (question|message|query)`),
	regexp.MustCompile(`(?i)(repeat|say) that again`),
	regexp.MustCompile(`(?i)^what did you (just )?say`),
}

// isConversationalReference reports whether the query refers to the
// conversation itself
func isConversationalReference(query string) bool {
	for _, pattern := range conversationalPatterns {
		if pattern.MatchString(query) {
			return true
		}
	}
	return false
}

// narrateFromMemory answers a conversational reference from the buffered
// turns without any retrieval
func narrateFromMemory(turns []model.ConversationTurn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == model.RoleUser {
			return fmt.Sprintf("Your last question was: %q", turns[i].Text)
		}
	}
	return "We haven't talked about anything yet in this conversation."
}

const selectionPromptFmt = `You decide whether a tool is needed to answer the user's question about their notes.

Available tools:
%s

Respond with exactly one line in the form "tool_name:parameter", or "none" if no tool is needed. No other text.`

// selectTool asks the model which tool to run for the query. A reply that
// does not match the selection grammar degrades to no tools; only provider
// failure is returned as an error.
func (a *Agent) selectTool(ctx context.Context, query string) (*tool.Call, error) {
	prompt := fmt.Sprintf(selectionPromptFmt, a.executor.Registry().SelectionList())

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt, ""),
		Temperature:       ptrFloat32(0.0),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(query, genai.RoleUser),
	}

	resp, err := a.llm.GenerateContent(ctx, contents, config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, goerr.Wrap(model.ErrModelUnavailable, "tool selection call failed", goerr.V("cause", err))
	}
	a.recordUsage(resp)

	line := firstText(resp)
	call, ok := ParseSelection(line)
	if !ok && line != "" && line != "none" {
		// Absence of a valid tool decision never blocks the conversation
		logging.From(ctx).Warn("unparseable tool selection, skipping retrieval", "reply", line)
	}
	return call, nil
}

// firstText returns the first text part of a model response, or ""
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return ""
	}
	return content.Parts[0].Text
}

func ptrFloat32(f float32) *float32 {
	return &f
}
