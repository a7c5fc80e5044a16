package model

// DataType classifies what kind of value the user asked for. It is derived
// from the query text, not from the extracted value.
type DataType string

const (
	DataTypeEmail    DataType = "email"
	DataTypePassword DataType = "password"
	DataTypeURL      DataType = "url"
	DataTypeText     DataType = "text"
	DataTypeCode     DataType = "code"
	DataTypeDate     DataType = "date"
	DataTypeOther    DataType = "other"
)

// ExtractedFact is the output of the extraction stage. Data is empty when
// nothing could be extracted from the tool results.
type ExtractedFact struct {
	Data       string   `json:"data"`
	Type       DataType `json:"type"`
	Confidence float64  `json:"confidence"`
}

// Found reports whether the extraction stage produced a value
func (f *ExtractedFact) Found() bool {
	return f.Data != ""
}

// ActionType identifies a UI action suggested alongside a response
type ActionType string

const (
	ActionCopy     ActionType = "copy"
	ActionFill     ActionType = "fill"
	ActionOpenLink ActionType = "open_link"
	ActionViewNote ActionType = "view_note"
)

// Action is a suggested follow-up the UI may offer. NoteID is set only for
// view_note actions.
type Action struct {
	Type   ActionType `json:"type"`
	NoteID NoteID     `json:"note_id,omitempty"`
}

// AgentResponse is the contract returned to the caller for every run,
// including failed ones. Immutable once constructed.
type AgentResponse struct {
	ExtractedData    string   `json:"extracted_data,omitempty"`
	DataType         DataType `json:"data_type"`
	Confidence       float64  `json:"confidence"`
	Narrative        string   `json:"narrative"`
	ReferenceNoteIDs []NoteID `json:"reference_note_ids,omitempty"`
	SuggestedActions []Action `json:"suggested_actions,omitempty"`

	// Warning carries non-fatal conditions such as a near-quota session.
	// It never replaces the narrative.
	Warning string `json:"warning,omitempty"`
}
