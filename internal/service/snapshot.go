package service

import (
	"encoding/json"

	"github.com/formloom/formloom-backend/internal/domain"
	"gorm.io/datatypes"
)

// snapshotDoc is the stored shape of a form snapshot: form metadata plus the
// ordered field list. The versioning core never looks inside it again.
type snapshotDoc struct {
	Form   snapshotForm    `json:"form"`
	Fields []snapshotField `json:"fields"`
}

type snapshotForm struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`
}

type snapshotField struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Type        string          `json:"type"`
	Placeholder string          `json:"placeholder,omitempty"`
	HelpText    string          `json:"help_text,omitempty"`
	Required    bool            `json:"required"`
	Active      bool            `json:"active"`
	Position    int             `json:"position"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// BuildSnapshot turns a form's current definition into an immutable snapshot
// document. Deterministic and side-effect free: field order follows the
// form's field list, values pass through as-is, field configs stay opaque.
func BuildSnapshot(form *domain.Form) (datatypes.JSON, error) {
	doc := snapshotDoc{
		Form: snapshotForm{
			Name:        form.Name,
			Description: form.Description,
			Config:      json.RawMessage(form.Config),
		},
		Fields: make([]snapshotField, 0, len(form.Fields)),
	}

	for _, f := range form.Fields {
		doc.Fields = append(doc.Fields, snapshotField{
			Key:         f.FieldKey,
			Label:       f.Label,
			Type:        f.FieldType,
			Placeholder: f.Placeholder,
			HelpText:    f.HelpText,
			Required:    f.IsRequired,
			Active:      f.IsActive,
			Position:    f.Position,
			Config:      json.RawMessage(f.Config),
		})
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
