package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/tool"
	"google.golang.org/genai"
)

const extractionPrompt = `Extract the exact value the user asked for from the tool results. Respond with ONLY the raw value, nothing else. No explanation, no quotes, no sentence around it. If the value is not present in the results, respond with the literal word: null`

// extract runs the extraction stage: a model call that sees only the tool
// results, kept apart from the narrative stage so conversational phrasing
// can never leak into the extracted value. With no tool results there is
// nothing to extract and no model call is made.
func (a *Agent) extract(ctx context.Context, query string, results []tool.Result) (*model.ExtractedFact, error) {
	dataType := classifyDataType(query)

	if len(results) == 0 {
		return &model.ExtractedFact{Type: dataType, Confidence: 0.5}, nil
	}

	resultJSON, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal tool results")
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(extractionPrompt, ""),
		Temperature:       ptrFloat32(0.0),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	userMessage := "Question: " + query + "\n\nTool results:\n" + string(resultJSON)
	contents := []*genai.Content{
		genai.NewContentFromText(userMessage, genai.RoleUser),
	}

	resp, err := a.llm.GenerateContent(ctx, contents, config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, goerr.Wrap(model.ErrModelUnavailable, "extraction call failed", goerr.V("cause", err))
	}
	a.recordUsage(resp)

	data := strings.TrimSpace(firstText(resp))
	if data == "null" || data == "" {
		return &model.ExtractedFact{Type: dataType, Confidence: 0.5}, nil
	}

	return &model.ExtractedFact{
		Data:       data,
		Type:       dataType,
		Confidence: 0.95,
	}, nil
}

// classifyDataType infers what kind of value the user asked for from the
// query text, not from the extracted value
func classifyDataType(query string) model.DataType {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "email"):
		return model.DataTypeEmail
	case strings.Contains(q, "password"):
		return model.DataTypePassword
	case strings.Contains(q, "recovery"), strings.Contains(q, "code"):
		return model.DataTypeCode
	case strings.Contains(q, "url"), strings.Contains(q, "link"), strings.Contains(q, "website"):
		return model.DataTypeURL
	default:
		return model.DataTypeOther
	}
}
