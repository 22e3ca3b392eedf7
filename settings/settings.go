// Package settings persists the values of the panel forms, e.g. credentials and
// URLs, as plain string key/value pairs.
package settings

import "errors"

var ErrClosed = errors.New("settings store is closed")

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores value for key, replacing an existing value.
	Set(key, value string) error

	// SetMany stores all values at once. Either all or none are written.
	SetMany(values map[string]string) error

	// Delete removes key. Removing a non-existing key is not an error.
	Delete(key string) error

	// Keys returns all keys in ascending order.
	Keys() ([]string, error)

	Close() error
}
