package config

import "time"

// Data is the actual configuration data for the app
type Data struct {
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	LoadedAt  time.Time `json:"-" yaml:"-"`
	UpdatedAt time.Time `json:"-" yaml:"-"`
	Version   int64     `json:"version" yaml:"version" jsonschema:"minimum=1,maximum=1"`
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Address   string    `json:"address" yaml:"address"`
	Log       struct {
		Level    string   `json:"level" yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,enum=silent"`
		Format   string   `json:"format" yaml:"format" jsonschema:"enum=console,enum=json"`
		Topics   []string `json:"topics" yaml:"topics"`
		MaxLines int      `json:"max_lines" yaml:"max_lines"`
	} `json:"log" yaml:"log"`
	DB struct {
		Dir string `json:"dir" yaml:"dir"`
	} `json:"db" yaml:"db"`
	Console struct {
		TimeFormat  string `json:"time_format" yaml:"time_format"`
		MirrorLevel string `json:"mirror_level" yaml:"mirror_level"`
	} `json:"console" yaml:"console"`
	Panels struct {
		Default    string `json:"default" yaml:"default"`
		TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
	} `json:"panels" yaml:"panels"`
	Gloria struct {
		URL        string `json:"url" yaml:"url"`
		APIVersion string `json:"api_version" yaml:"api_version"`
	} `json:"gloria" yaml:"gloria"`
	Telegram struct {
		URL string `json:"url" yaml:"url"`
	} `json:"telegram" yaml:"telegram"`
	Database struct {
		DashboardURL string `json:"dashboard_url" yaml:"dashboard_url"`
	} `json:"database" yaml:"database"`
	API struct {
		CORS struct {
			Origins []string `json:"origins" yaml:"origins"`
		} `json:"cors" yaml:"cors"`
	} `json:"api" yaml:"api"`
	Metrics struct {
		EnablePrometheus bool `json:"enable_prometheus" yaml:"enable_prometheus"`
	} `json:"metrics" yaml:"metrics"`
	Debug struct {
		Profiling    bool `json:"profiling" yaml:"profiling"`
		AutoMaxProcs bool `json:"auto_max_procs" yaml:"auto_max_procs"`
	} `json:"debug" yaml:"debug"`
}
