package agent

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/kioku/pkg/tool"
)

// The selection reply contract is a single line: "tool_name:parameter" for
// the read tools, or "none". This parser is the only place that string
// contract lives.
var selectionRe = regexp.MustCompile(`^(search_notes|get_note|list_categories):(.+)$`)

// ParseSelection parses one tool selection reply line. ok is false when
// the line is empty, "none", or does not match the grammar; the caller
// treats all of those as "no tools".
func ParseSelection(line string) (*tool.Call, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line == "none" {
		return nil, false
	}

	m := selectionRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	kind := tool.Kind(m[1])
	arg := strings.TrimSpace(m[2])

	switch kind {
	case tool.KindSearchNotes:
		return &tool.Call{Kind: kind, Params: map[string]any{"query": arg}}, true
	case tool.KindGetNote:
		return &tool.Call{Kind: kind, Params: map[string]any{"note_id": arg}}, true
	case tool.KindListCategories:
		// The grammar requires an argument but the tool takes none
		return &tool.Call{Kind: kind, Params: map[string]any{}}, true
	default:
		return nil, false
	}
}
