// Package value implements the typed config values. Each value is bound to a
// field of the config struct and can be set from its string representation,
// e.g. from an environment variable.
package value

type Value interface {
	// String returns a string representation of the value.
	String() string

	// Set a new value from its string representation. Returns an error if
	// the string can't be converted.
	Set(string) error

	// Validate the current value.
	Validate() error

	// IsEmpty returns whether the value is the empty value of its type.
	IsEmpty() bool
}
