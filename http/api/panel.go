package api

import (
	"github.com/quickshop/bothub/panel"
)

// SecretMask replaces the value of secret fields in responses. Sending it
// back unchanged keeps the stored value.
const SecretMask = "********"

// Panel is a configuration panel with its fields and their current values
type Panel struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Active bool         `json:"active"`
	Fields []PanelField `json:"fields"`
}

// PanelField is one persisted value of a panel
type PanelField struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Input       string `json:"input" enums:"text,secret,url" jsonschema:"enum=text,enum=secret,enum=url"`
	Default     string `json:"default"`
	Validate    string `json:"validate"`
	Value       string `json:"value"`
}

// Unmarshal converts a panel definition and its values to the API representation.
// Values of secret fields are masked.
func (p *Panel) Unmarshal(def panel.Definition, values map[string]string, active bool) {
	p.ID = def.ID.String()
	p.Title = def.Title
	p.Active = active
	p.Fields = make([]PanelField, 0, len(def.Fields))

	for _, f := range def.Fields {
		field := PanelField{
			Key:         f.Key,
			Label:       f.Label,
			Description: f.Description,
			Input:       string(f.Input),
			Default:     f.Default,
			Validate:    f.Validate,
			Value:       values[f.Key],
		}

		if f.Input == panel.InputSecret && len(field.Value) != 0 {
			field.Value = SecretMask
		}

		p.Fields = append(p.Fields, field)
	}
}

// PanelSettings are new values for the fields of a panel, by field key.
// Fields that are not present keep their current value.
type PanelSettings map[string]string

// Marshal returns the values to store. Masked secrets are left out such that
// they keep their current value.
func (s PanelSettings) Marshal(def panel.Definition) map[string]string {
	values := make(map[string]string, len(s))

	for key, value := range s {
		if f, ok := def.Field(key); ok && f.Input == panel.InputSecret && value == SecretMask {
			continue
		}

		values[key] = value
	}

	return values
}

// ActivePanel identifies the panel that reacts to actions
type ActivePanel struct {
	ID string `json:"id" validate:"required"`
}
