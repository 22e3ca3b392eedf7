// Package event implements the bridge that carries action requests from the
// console to the configuration panel they are meant for.
package event

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the name of an action a panel can perform.
type Kind string

const (
	KindTestConnection Kind = "test-connection"
	KindFetchData      Kind = "fetch-data"
	KindShowSnippet    Kind = "show-snippet"
)

// Kinds lists all known action kinds.
var Kinds = []Kind{KindTestConnection, KindFetchData, KindShowSnippet}

var ErrUnknownKind = errors.New("unknown action kind")

func (k Kind) IsValid() bool {
	switch k {
	case KindTestConnection, KindFetchData, KindShowSnippet:
		return true
	}

	return false
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}

	return k, nil
}

// Target identifies a configuration panel.
type Target string

func (t Target) String() string {
	return string(t)
}

// ActionEvent asks the panel Target to perform the action Kind. It is not
// stored anywhere. If nobody is subscribed for Target when it is published,
// it is dropped.
type ActionEvent struct {
	Kind   Kind
	Target Target
}

func NewActionEvent(kind Kind, target Target) ActionEvent {
	return ActionEvent{
		Kind:   kind,
		Target: target,
	}
}

func (e ActionEvent) String() string {
	return string(e.Kind) + "@" + string(e.Target)
}
