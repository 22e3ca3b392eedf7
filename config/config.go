// Package config implements the configuration of the app. Every value has a
// default, can be read from a JSON or YAML file, and can be overridden by an
// environment variable with the prefix BOTHUB_.
package config

import (
	"time"

	"github.com/quickshop/bothub/config/value"
	"github.com/quickshop/bothub/config/vars"

	haikunator "github.com/atrox/haikunatorgo/v2"
	"github.com/google/uuid"
)

const version int64 = 1

// Panels lists the ids of the panels that can be the default panel.
var Panels = []string{"gloria", "telegram", "database", "system"}

// Config is a wrapper for Data
type Config struct {
	vars vars.Variables

	Data
}

// New returns a Config which is initialized with its default values
func New() *Config {
	cfg := &Config{}

	cfg.init()

	return cfg
}

func (d *Config) Get(name string) (string, error) {
	return d.vars.Get(name)
}

func (d *Config) Set(name, val string) error {
	return d.vars.Set(name, val)
}

// Clone returns a deep copy of the config. The merged state of the variables
// is preserved.
func (d *Config) Clone() *Config {
	data := New()

	data.Data = d.Data

	data.Log.Topics = copyStrings(d.Log.Topics)
	data.API.CORS.Origins = copyStrings(d.API.CORS.Origins)

	data.vars.Transfer(&d.vars)

	return data
}

func (d *Config) init() {
	d.CreatedAt = time.Now()

	d.vars.Register(value.NewInt64(&d.Version, version), "version", "", nil, "Configuration file layout version", true, false)
	d.vars.Register(value.NewString(&d.ID, uuid.New().String()), "id", "BOTHUB_ID", nil, "ID for this instance", true, false)
	d.vars.Register(value.NewString(&d.Name, haikunator.New().Haikunate()), "name", "BOTHUB_NAME", nil, "A human readable name for this instance", false, false)
	d.vars.Register(value.NewMustAddress(&d.Address, ":8080"), "address", "BOTHUB_ADDRESS", nil, "HTTP listening address", true, false)

	// Log
	d.vars.Register(value.NewLogLevel(&d.Log.Level, "info"), "log.level", "BOTHUB_LOG_LEVEL", nil, "Loglevel: silent, error, warn, info, debug", false, false)
	d.vars.Register(value.NewEnum(&d.Log.Format, "console", []string{"console", "json"}), "log.format", "BOTHUB_LOG_FORMAT", nil, "Format of the log output: console or json", false, false)
	d.vars.Register(value.NewStringList(&d.Log.Topics, []string{}, ","), "log.topics", "BOTHUB_LOG_TOPICS", nil, "Show only selected log topics", false, false)
	d.vars.Register(value.NewIntRange(&d.Log.MaxLines, 1000, 0, 1000000), "log.max_lines", "BOTHUB_LOG_MAX_LINES", []string{"BOTHUB_LOG_MAXLINES"}, "Number of latest log lines to keep in memory", false, false)

	// DB
	d.vars.Register(value.NewDir(&d.DB.Dir, "./data"), "db.dir", "BOTHUB_DB_DIR", nil, "Directory for the settings database", true, false)

	// Console
	d.vars.Register(value.NewStrftime(&d.Console.TimeFormat, "%H:%M:%S"), "console.time_format", "BOTHUB_CONSOLE_TIME_FORMAT", nil, "strftime pattern for the timestamp of console entries", false, false)
	d.vars.Register(value.NewLogLevel(&d.Console.MirrorLevel, "silent"), "console.mirror_level", "BOTHUB_CONSOLE_MIRROR_LEVEL", nil, "Copy application log messages up to this level into the console, silent disables it", false, false)

	// Panels
	d.vars.Register(value.NewEnum(&d.Panels.Default, "gloria", Panels), "panels.default", "BOTHUB_PANELS_DEFAULT", nil, "Panel that is active after start", false, false)
	d.vars.Register(value.NewIntRange(&d.Panels.TimeoutSec, 10, 1, 300), "panels.timeout_sec", "BOTHUB_PANELS_TIMEOUT_SEC", nil, "Timeout for a single panel action in seconds", false, false)

	// Gloria
	d.vars.Register(value.NewURL(&d.Gloria.URL, "https://pos.globalfoodsoft.com/pos"), "gloria.url", "BOTHUB_GLORIA_URL", nil, "Base URL of the POS API", true, false)
	d.vars.Register(value.NewString(&d.Gloria.APIVersion, "2"), "gloria.api_version", "BOTHUB_GLORIA_API_VERSION", nil, "Value of the Glf-Api-Version header", true, false)

	// Telegram
	d.vars.Register(value.NewURL(&d.Telegram.URL, "https://api.telegram.org"), "telegram.url", "BOTHUB_TELEGRAM_URL", nil, "Base URL of the Bot API", true, false)

	// Database
	d.vars.Register(value.NewURL(&d.Database.DashboardURL, "https://supabase.com/dashboard"), "database.dashboard_url", "BOTHUB_DATABASE_DASHBOARD_URL", nil, "URL of the database dashboard", false, false)

	// API
	d.vars.Register(value.NewCORSOrigins(&d.API.CORS.Origins, []string{"*"}, ","), "api.cors.origins", "BOTHUB_API_CORS_ORIGINS", nil, "Allowed CORS origins for the API", false, false)

	// Metrics
	d.vars.Register(value.NewBool(&d.Metrics.EnablePrometheus, false), "metrics.enable_prometheus", "BOTHUB_METRICS_ENABLE_PROMETHEUS", nil, "Enable prometheus endpoint /metrics", false, false)

	// Debug
	d.vars.Register(value.NewBool(&d.Debug.Profiling, false), "debug.profiling", "BOTHUB_DEBUG_PROFILING", nil, "Start the gops agent", false, false)
	d.vars.Register(value.NewBool(&d.Debug.AutoMaxProcs, true), "debug.auto_max_procs", "BOTHUB_DEBUG_AUTO_MAX_PROCS", nil, "Set GOMAXPROCS according to the CPU quota", false, false)
}

// Merge overrides the values with the environment variables.
func (d *Config) Merge() {
	d.vars.Merge()
}

// Validate validates the current state of the config. Check HasErrors()
// afterwards.
func (d *Config) Validate(resetLogs bool) {
	if resetLogs {
		d.vars.ResetLogs()
	}

	if d.Version != version {
		d.vars.Log("error", "version", "unknown configuration layout version (found version %d, expecting version %d)", d.Version, version)

		return
	}

	d.vars.Validate()

	if d.Console.MirrorLevel == "debug" && len(d.Log.Topics) == 0 {
		d.vars.Log("warn", "console.mirror_level", "mirroring debug messages without log.topics floods the console")
	}
}

// Messages calls logger for each message from merging and validating.
func (d *Config) Messages(logger func(level string, v vars.Variable, message string)) {
	d.vars.Messages(logger)
}

// HasErrors returns whether there are errors after validation.
func (d *Config) HasErrors() bool {
	return d.vars.HasErrors()
}

// Overrides returns the names of the values set by environment variables.
func (d *Config) Overrides() []string {
	return d.vars.Overrides()
}

// Variables returns all values in the order of registration.
func (d *Config) Variables() []vars.Variable {
	return d.vars.List()
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}

	dst := make([]string, len(src))
	copy(dst, src)

	return dst
}
