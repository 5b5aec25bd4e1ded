package action

// ID identifies a regulatory action that can be recorded against a mark
type ID string

const (
	AcceptanceAct          ID = "acceptanceAct"
	ImportNoticeEAEU       ID = "importNoticeEAEU"
	ImportNoticeThird      ID = "importNoticeThird"
	EnterCirculationNotice ID = "enterCirculationNotice"
	ExitCirculationNotice  ID = "exitCirculationNotice"
	ExportNoticeEAEU       ID = "exportNoticeEAEU"
	AcceptanceNoticeEAEU   ID = "acceptanceNoticeEAEU"

	// Other completes immediately without a form or confirmation.
	// TODO: give other a field list (at least a free-text description) once its data contract is settled.
	Other ID = "other"
)

// String returns the string representation of the action ID
func (id ID) String() string {
	return string(id)
}

// IsPassThrough reports whether the action skips data entry entirely
func (id ID) IsPassThrough() bool {
	return id == Other
}

// Definition describes one action: its label key and the fields it requires, in render order
type Definition struct {
	ID             ID       `json:"id" yaml:"id"`
	LabelKey       string   `json:"label_key" yaml:"label_key"`
	RequiredFields []string `json:"required_fields" yaml:"required_fields"`
}

func (d Definition) clone() Definition {
	d.RequiredFields = append([]string(nil), d.RequiredFields...)
	return d
}
