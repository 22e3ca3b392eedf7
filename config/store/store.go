// Package store persists the configuration.
package store

import "github.com/quickshop/bothub/config"

// Store is a store for the configuration data.
type Store interface {
	// Get the stored configuration.
	Get() *config.Config

	// Set a new configuration for persistence.
	Set(data *config.Config) error

	// GetActive returns the configuration that has been set as active
	// before, otherwise the stored configuration.
	GetActive() *config.Config

	// SetActive keeps the given configuration as active in memory.
	SetActive(data *config.Config) error

	// Reload asks the app to apply the stored configuration.
	Reload() error
}

type dataVersion struct {
	Version int64 `json:"version" yaml:"version"`
}
