package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quickshop/bothub/config"
	"github.com/quickshop/bothub/encoding/json"

	"gopkg.in/yaml.v3"
)

type format int

const (
	formatJSON format = iota
	formatYAML
)

type fileStore struct {
	path   string
	format format

	base   *config.Config
	active *config.Config
	lock   sync.RWMutex

	reloadFn func()
}

// NewFile reads the config file from path. The format is YAML if the file
// extension is .yaml or .yml, otherwise JSON. After reading it in, the file
// is written back such that it contains all current values. A missing file is
// created with the default values.
func NewFile(path string, reloadFn func()) (Store, error) {
	abspath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to determine absolute path of '%s': %w", path, err)
	}

	c := &fileStore{
		path:     abspath,
		format:   formatJSON,
		reloadFn: reloadFn,
	}

	switch strings.ToLower(filepath.Ext(abspath)) {
	case ".yaml", ".yml":
		c.format = formatYAML
	}

	c.base = config.New()

	if err := c.load(c.base); err != nil {
		return nil, fmt.Errorf("failed to read config from '%s': %w", c.path, err)
	}

	if err := c.store(c.base); err != nil {
		return nil, fmt.Errorf("failed to write config to '%s': %w", c.path, err)
	}

	return c, nil
}

func (c *fileStore) Get() *config.Config {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.base.Clone()
}

func (c *fileStore) Set(d *config.Config) error {
	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	data := d.Clone()

	if err := c.store(data); err != nil {
		return fmt.Errorf("failed to write config to '%s': %w", c.path, err)
	}

	c.lock.Lock()
	c.base = data
	c.lock.Unlock()

	return nil
}

func (c *fileStore) GetActive() *config.Config {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.active != nil {
		return c.active.Clone()
	}

	return c.base.Clone()
}

func (c *fileStore) SetActive(d *config.Config) error {
	d.Validate(true)

	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	c.lock.Lock()
	c.active = d.Clone()
	c.lock.Unlock()

	return nil
}

func (c *fileStore) Reload() error {
	if c.reloadFn == nil {
		return nil
	}

	c.reloadFn()

	return nil
}

func (c *fileStore) load(cfg *config.Config) error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	version := dataVersion{}

	if c.format == formatYAML {
		if err := yaml.Unmarshal(data, &version); err != nil {
			return err
		}
	} else {
		if err := json.Unmarshal(data, &version); err != nil {
			return json.FormatError(data, err)
		}
	}

	if version.Version != 1 {
		return fmt.Errorf("unknown configuration layout version %d", version.Version)
	}

	if c.format == formatYAML {
		if err := yaml.Unmarshal(data, &cfg.Data); err != nil {
			return err
		}
	} else {
		if err := json.Unmarshal(data, &cfg.Data); err != nil {
			return json.FormatError(data, err)
		}
	}

	cfg.UpdatedAt = cfg.CreatedAt

	return nil
}

func (c *fileStore) store(cfg *config.Config) error {
	var data []byte
	var err error

	if c.format == formatYAML {
		buf := bytes.Buffer{}
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err = enc.Encode(&cfg.Data); err == nil {
			err = enc.Close()
		}

		data = buf.Bytes()
	} else {
		data, err = json.MarshalIndent(&cfg.Data, "", "    ")
	}

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0750); err != nil {
		return err
	}

	// Write to a temporary file first such that the config is never truncated.
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), c.path)
}
