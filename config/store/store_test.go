package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.json")

	s, err := NewFile(path, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"version": 1`)
	require.Contains(t, string(data), `"timeout_sec": 10`)

	cfg := s.Get()
	require.Equal(t, "gloria", cfg.Panels.Default)
}

func TestFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, os.WriteFile(path, []byte(`{
    "version": 1,
    "id": "abc",
    "panels": {"default": "system", "timeout_sec": 5},
    "telegram": {"url": "http://localhost:8081"}
}`), 0600))

	s, err := NewFile(path, nil)
	require.NoError(t, err)

	cfg := s.Get()
	require.Equal(t, "abc", cfg.ID)
	require.Equal(t, "system", cfg.Panels.Default)
	require.Equal(t, 5, cfg.Panels.TimeoutSec)
	require.Equal(t, "http://localhost:8081", cfg.Telegram.URL)

	// Values missing in the file keep their defaults
	require.Equal(t, "2", cfg.Gloria.APIVersion)
}

func TestFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte(`version: 1
id: abc
log:
  level: debug
  topics:
    - panels
`), 0600))

	s, err := NewFile(path, nil)
	require.NoError(t, err)

	cfg := s.Get()
	require.Equal(t, "abc", cfg.ID)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, []string{"panels"}, cfg.Log.Topics)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "timeout_sec: 10"))
}

func TestFileSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, os.WriteFile(path, []byte("{\n\"version\": 1,\n}"), 0600))

	_, err := NewFile(path, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 3")
}

func TestFileUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"version": 3}`), 0600))

	_, err := NewFile(path, nil)
	require.Error(t, err)
}

func TestFileSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	reloaded := false

	s, err := NewFile(path, func() { reloaded = true })
	require.NoError(t, err)

	cfg := s.Get()
	cfg.Name = "quickshop"
	cfg.DB.Dir = t.TempDir()
	cfg.Validate(true)

	require.NoError(t, s.Set(cfg))
	require.NoError(t, s.Reload())
	require.True(t, reloaded)

	s, err = NewFile(path, nil)
	require.NoError(t, err)
	require.Equal(t, "quickshop", s.Get().Name)
}

func TestActive(t *testing.T) {
	for name, s := range map[string]Store{"memory": NewMemory()} {
		t.Run(name, func(t *testing.T) {
			cfg := s.Get()
			cfg.DB.Dir = t.TempDir()
			cfg.Panels.Default = "telegram"

			require.NoError(t, s.SetActive(cfg))
			require.Equal(t, "telegram", s.GetActive().Panels.Default)
			require.Equal(t, "gloria", s.Get().Panels.Default)

			cfg.Panels.TimeoutSec = 0
			require.Error(t, s.SetActive(cfg))
		})
	}
}

func TestLocation(t *testing.T) {
	require.Equal(t, "/etc/bothub.yaml", Location("/etc/bothub.yaml"))
	require.NotEmpty(t, Location(""))
}
