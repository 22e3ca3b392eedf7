// Package panel implements the configuration panels of the dashboard and the
// protocol that decides which of them reacts to console actions.
//
// Only the active panel is subscribed to the event bridge. Activating another
// panel unsubscribes the previous one before the new one is subscribed.
package panel

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
)

var (
	ErrUnknownPanel = errors.New("unknown panel")
	ErrUnsupported  = errors.New("action not supported by panel")
)

// Input is the kind of form input for a field.
type Input string

const (
	InputText   Input = "text"
	InputSecret Input = "secret"
	InputURL    Input = "url"
)

// Field describes one persisted value of a panel.
type Field struct {
	Key         string
	Label       string
	Description string
	Input       Input
	Default     string

	// Validate is a go-playground/validator tag, e.g. "required,alphanum".
	Validate string
}

// StorageKey is the key the value is persisted under.
func (f Field) StorageKey() string {
	return strings.ToUpper(f.Key)
}

// Hint returns the first characters of a secret for display in the console.
// Secrets of up to 8 characters are hidden completely and an empty string is
// returned.
func Hint(secret string) string {
	if utf8.RuneCountInString(secret) <= 8 {
		return ""
	}

	return string([]rune(secret)[:4]) + "…"
}

type Definition struct {
	ID     event.Target
	Title  string
	Fields []Field
}

// Field returns the field with the given key.
func (d Definition) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}

	return Field{}, false
}

// Action is handed to a panel when it should perform Kind. Values holds the
// current persisted values of all fields of the panel.
type Action struct {
	Kind   event.Kind
	Values map[string]string
}

type Panel interface {
	Definition() Definition

	// Handle performs the action. Progress and results are reported to the
	// console by the panel itself. ErrUnsupported is returned for kinds the
	// panel doesn't implement.
	Handle(ctx context.Context, a Action) error
}

// Reporter receives console messages. It is implemented by *console.Store.
type Reporter interface {
	Append(message string, severity console.Severity)
}
