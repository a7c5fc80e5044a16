package tool

// Kind identifies a built-in tool. The set is closed: dispatch happens via
// exhaustive switch, and an unknown name falls through to the fail-safe
// unknown-tool path.
type Kind string

const (
	KindSearchNotes    Kind = "search_notes"
	KindGetNote        Kind = "get_note"
	KindListCategories Kind = "list_categories"
	KindCreateNote     Kind = "create_note"
	KindUpdateNote     Kind = "update_note"
	KindDeleteNote     Kind = "delete_note"
)

// ParseKind maps a tool name to its Kind. ok is false for unknown names.
func ParseKind(name string) (Kind, bool) {
	switch Kind(name) {
	case KindSearchNotes, KindGetNote, KindListCategories,
		KindCreateNote, KindUpdateNote, KindDeleteNote:
		return Kind(name), true
	default:
		return "", false
	}
}

// Mutating reports whether the tool writes to the note store. Mutating
// tools are excluded from the active set in read-only contexts.
func (k Kind) Mutating() bool {
	switch k {
	case KindCreateNote, KindUpdateNote, KindDeleteNote:
		return true
	default:
		return false
	}
}

// Call is one tool invocation request. Params are validated against the
// tool's declared schema before execution.
type Call struct {
	Kind   Kind           `json:"kind"`
	Params map[string]any `json:"params"`
}

// Result is the outcome of one tool call. Exactly one of Result and Error
// is set.
type Result struct {
	Tool   string         `json:"tool"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}
