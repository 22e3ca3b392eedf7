package store

import (
	"os"
	"path/filepath"
)

// Location returns the path to the config file. If no path is provided,
// these locations are probed and the last existing one wins:
// - os.UserConfigDir() + /bothub/config.json
// - os.UserHomeDir() + /.config/bothub/config.json
// - ./config/config.yaml
// - ./config/config.json
// If none exists, ./config/config.json is assumed.
func Location(path string) string {
	if len(path) != 0 {
		return path
	}

	locations := []string{}

	if dir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, filepath.Join(dir, "bothub", "config.json"))
	}

	if dir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(dir, ".config", "bothub", "config.json"))
	}

	locations = append(locations, "./config/config.yaml", "./config/config.json")

	configfile := ""

	for _, p := range locations {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}

		configfile = p
	}

	if len(configfile) == 0 {
		configfile = "./config/config.json"
	}

	return configfile
}
