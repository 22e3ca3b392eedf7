package store

import (
	"fmt"
	"sync"

	"github.com/quickshop/bothub/config"
)

type memoryStore struct {
	base   *config.Config
	active *config.Config
	lock   sync.RWMutex
}

// NewMemory returns a store that keeps the config only in memory. It starts
// with the default values.
func NewMemory() Store {
	return &memoryStore{
		base: config.New(),
	}
}

func (c *memoryStore) Get() *config.Config {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.base.Clone()
}

func (c *memoryStore) Set(d *config.Config) error {
	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	c.lock.Lock()
	c.base = d.Clone()
	c.lock.Unlock()

	return nil
}

func (c *memoryStore) GetActive() *config.Config {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.active != nil {
		return c.active.Clone()
	}

	return c.base.Clone()
}

func (c *memoryStore) SetActive(d *config.Config) error {
	d.Validate(true)

	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	c.lock.Lock()
	c.active = d.Clone()
	c.lock.Unlock()

	return nil
}

func (c *memoryStore) Reload() error {
	return nil
}
