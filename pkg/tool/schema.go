package tool

import (
	"github.com/m-mizutani/goerr/v2"
)

// ParamSpec declares one parameter of a tool
type ParamSpec struct {
	Type        string // "string" or "integer"
	Required    bool
	Description string
}

// Spec describes a tool for the selection prompt and for schema validation.
// Description is used only to build prompts, never for validation.
type Spec struct {
	Kind        Kind
	Description string
	Params      map[string]ParamSpec
}

// builtinSpecs declares the full tool catalog. The registry filters it
// through policy to produce the active set.
func builtinSpecs() []Spec {
	return []Spec{
		{
			Kind:        KindSearchNotes,
			Description: "Search notes by semantic similarity to a query",
			Params: map[string]ParamSpec{
				"query": {Type: "string", Required: true, Description: "Search query text"},
				"limit": {Type: "integer", Required: false, Description: "Maximum number of results (default 5)"},
			},
		},
		{
			Kind:        KindGetNote,
			Description: "Fetch a single note by its ID",
			Params: map[string]ParamSpec{
				"note_id": {Type: "string", Required: true, Description: "Note ID"},
			},
		},
		{
			Kind:        KindListCategories,
			Description: "List the note categories in use",
			Params:      map[string]ParamSpec{},
		},
		{
			Kind:        KindCreateNote,
			Description: "Create a new note",
			Params: map[string]ParamSpec{
				"title":    {Type: "string", Required: true, Description: "Note title"},
				"body":     {Type: "string", Required: true, Description: "Note body text"},
				"category": {Type: "string", Required: false, Description: "Note category"},
			},
		},
		{
			Kind:        KindUpdateNote,
			Description: "Update an existing note",
			Params: map[string]ParamSpec{
				"note_id":  {Type: "string", Required: true, Description: "Note ID"},
				"title":    {Type: "string", Required: false, Description: "New title"},
				"body":     {Type: "string", Required: false, Description: "New body text"},
				"category": {Type: "string", Required: false, Description: "New category"},
			},
		},
		{
			Kind:        KindDeleteNote,
			Description: "Delete a note by its ID",
			Params: map[string]ParamSpec{
				"note_id": {Type: "string", Required: true, Description: "Note ID"},
			},
		},
	}
}

// validateParams checks a call's params against the tool's schema
func validateParams(spec Spec, params map[string]any) error {
	for name, ps := range spec.Params {
		value, ok := params[name]
		if !ok {
			if ps.Required {
				return goerr.New("missing required parameter",
					goerr.V("tool", spec.Kind), goerr.V("param", name))
			}
			continue
		}

		switch ps.Type {
		case "string":
			if _, ok := value.(string); !ok {
				return goerr.New("parameter must be a string",
					goerr.V("tool", spec.Kind), goerr.V("param", name))
			}
		case "integer":
			switch value.(type) {
			case int, int64, float64:
			default:
				return goerr.New("parameter must be an integer",
					goerr.V("tool", spec.Kind), goerr.V("param", name))
			}
		}
	}

	for name := range params {
		if _, ok := spec.Params[name]; !ok {
			return goerr.New("unknown parameter",
				goerr.V("tool", spec.Kind), goerr.V("param", name))
		}
	}

	return nil
}

// stringParam reads an optional string parameter
func stringParam(params map[string]any, name string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return ""
}

// intParam reads an optional integer parameter with a default
func intParam(params map[string]any, name string, def int) int {
	switch v := params[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}
