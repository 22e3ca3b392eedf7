package api

import (
	"context"
	"fmt"
	"io"
	golog "log"
	gohttp "net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quickshop/bothub/app"
	"github.com/quickshop/bothub/config"
	configstore "github.com/quickshop/bothub/config/store"
	configvars "github.com/quickshop/bothub/config/vars"
	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/http"
	"github.com/quickshop/bothub/log"
	"github.com/quickshop/bothub/panel"
	"github.com/quickshop/bothub/panel/database"
	"github.com/quickshop/bothub/panel/gloria"
	"github.com/quickshop/bothub/panel/system"
	"github.com/quickshop/bothub/panel/telegram"
	"github.com/quickshop/bothub/prometheus"
	"github.com/quickshop/bothub/psutil"
	"github.com/quickshop/bothub/settings"

	"github.com/google/gops/agent"
	"go.uber.org/automaxprocs/maxprocs"
)

// The API interface is the implementation of the bot hub.
type API interface {
	// Start starts the API. This is blocking until the app has
	// been ended with Stop() or Destroy(). In this case a nil error
	// is returned. An ErrConfigReload error is returned if a
	// configuration reload has been requested.
	Start(ctx context.Context) error

	// Stop stops the API. The console keeps its entries such that they
	// are still there after starting the API again.
	Stop()

	// Destroy is the same as Stop() but no state will be kept intact.
	Destroy()

	// Reload the configuration for the API. If there's an error the
	// previously loaded configuration is not altered.
	Reload() error
}

type api struct {
	console    *console.Store
	bridge     *event.Bridge
	settings   settings.Store
	tabs       *panel.Tabs
	prom       prometheus.Metrics
	psutil     psutil.Util
	mainserver *gohttp.Server

	errorChan chan error

	log struct {
		writer io.Writer
		output log.Writer
		buffer log.BufferWriter
		logger struct {
			core log.Logger
			main log.Logger
		}
	}

	config struct {
		path   string
		store  configstore.Store
		config *config.Config
	}

	lock   sync.Mutex
	wgStop sync.WaitGroup
	state  string

	startedAt time.Time

	undoMaxprocs func()
}

// ErrConfigReload is an error returned to indicate that a reload of
// the configuration has been requested.
var ErrConfigReload = fmt.Errorf("configuration reload")

// New returns a new instance of the API interface. An empty configpath
// selects the default location of the config file.
func New(configpath string, logwriter io.Writer) (API, error) {
	a := &api{
		state: "idle",
	}

	a.config.path = configstore.Location(configpath)
	a.log.writer = logwriter

	if a.log.writer == nil {
		a.log.writer = io.Discard
	}

	a.errorChan = make(chan error, 1)

	if err := a.Reload(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *api) Reload() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.state == "running" {
		return fmt.Errorf("can't reload config while running")
	}

	if a.errorChan == nil {
		a.errorChan = make(chan error, 1)
	}

	logger := log.New("Core").WithOutput(log.NewConsoleWriter(a.log.writer, log.Lwarn, true))

	store, err := configstore.NewFile(a.config.path, func() {
		select {
		case a.errorChan <- ErrConfigReload:
		default:
		}
	})
	if err != nil {
		return err
	}

	cfg := store.Get()

	cfg.Merge()
	cfg.Validate(false)

	loglevel, _ := log.ParseLevel(cfg.Log.Level)

	var output log.Writer

	if cfg.Log.Format == "json" {
		output = log.NewJSONWriter(a.log.writer, loglevel)
	} else {
		output = log.NewConsoleWriter(a.log.writer, loglevel, true)
	}

	buffer := log.NewBufferWriter(loglevel, cfg.Log.MaxLines)

	output = log.NewMultiWriter(
		log.NewTopicWriter(output, cfg.Log.Topics),
		buffer,
	)

	logger = logger.WithOutput(output)

	logfields := log.Fields{
		"application": app.Name,
		"version":     app.Version.String(),
		"arch":        app.Arch,
		"compiler":    app.Compiler,
	}

	if len(app.Commit) != 0 && len(app.Branch) != 0 {
		logfields["commit"] = app.Commit
		logfields["branch"] = app.Branch
	}

	if len(app.Build) != 0 {
		logfields["build"] = app.Build
	}

	logger.Info().WithFields(logfields).Log("")

	logger.Info().WithField("path", a.config.path).Log("Read config file")

	configlogger := logger.WithComponent("Config")
	cfg.Messages(func(level string, v configvars.Variable, message string) {
		configlogger = configlogger.WithFields(log.Fields{
			"variable":    v.Name,
			"value":       v.Value,
			"env":         v.EnvName,
			"description": v.Description,
			"override":    v.Merged,
		})
		configlogger.Debug().Log(message)

		switch level {
		case "warn":
			configlogger.Warn().Log(message)
		case "error":
			configlogger.Error().WithField("error", message).Log("")
		default:
			break
		}
	})

	if cfg.HasErrors() {
		logger.Error().WithField("error", "Not all variables are set or are valid. Check the error messages above. Bailing out.").Log("")
		return fmt.Errorf("not all variables are set or valid")
	}

	cfg.LoadedAt = time.Now()

	store.SetActive(cfg)

	a.config.store = store
	a.config.config = cfg
	a.log.logger.core = logger
	a.log.output = output
	a.log.buffer = buffer

	return nil
}

func (a *api) start(ctx context.Context) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.errorChan == nil {
		a.errorChan = make(chan error, 1)
	}

	if a.state == "running" {
		return fmt.Errorf("already running")
	}

	a.state = "starting"
	a.startedAt = time.Now()

	cfg := a.config.store.GetActive()

	if cfg.Debug.AutoMaxProcs {
		undoMaxprocs, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			format = strings.TrimPrefix(format, "maxprocs: ")
			a.log.logger.core.Debug().Log(format, args...)
		}))
		if err != nil {
			a.log.logger.core.Warn().Log("%s", err.Error())
		}

		a.undoMaxprocs = undoMaxprocs
	}

	if cfg.Debug.Profiling {
		if err := agent.Listen(agent.Options{}); err != nil {
			a.log.logger.core.Error().WithError(err).Log("Starting gops agent")
		}
	}

	if a.console == nil {
		store, err := console.New(console.Config{
			TimeFormat: cfg.Console.TimeFormat,
		})
		if err != nil {
			return fmt.Errorf("unable to create console: %w", err)
		}

		a.console = store
	}

	if level, _ := log.ParseLevel(cfg.Console.MirrorLevel); level != log.Lsilent {
		a.log.logger.core = a.log.logger.core.WithOutput(log.NewMultiWriter(
			a.log.output,
			console.NewLogWriter(a.console, level),
		))
	} else {
		a.log.logger.core = a.log.logger.core.WithOutput(a.log.output)
	}

	a.log.logger.main = a.log.logger.core.WithComponent("HTTP").WithField("address", cfg.Address)

	a.psutil = psutil.New("/sys/fs/cgroup")

	store, err := settings.NewBolt(settings.BoltConfig{
		Path: filepath.Join(cfg.DB.Dir, "settings.db"),
	})
	if err != nil {
		return fmt.Errorf("unable to open settings database: %w", err)
	}

	a.settings = store

	a.bridge = event.NewBridge(event.Config{
		Logger: a.log.logger.core.WithComponent("Bridge"),
	})

	form := panel.NewForm(a.settings, a.console)

	client := &gohttp.Client{
		Timeout: time.Duration(cfg.Panels.TimeoutSec) * time.Second,
	}

	gloriaConfig := gloria.Config{
		URL:        cfg.Gloria.URL,
		APIVersion: cfg.Gloria.APIVersion,
		Console:    a.console,
		Client:     client,
	}

	tabs, err := panel.NewTabs(panel.TabsConfig{
		Bridge:  a.bridge,
		Console: a.console,
		Form:    form,
		Timeout: time.Duration(cfg.Panels.TimeoutSec) * time.Second,
		Logger:  a.log.logger.core.WithComponent("Panels"),
	},
		gloria.New(gloriaConfig),
		telegram.New(telegram.Config{
			URL:     cfg.Telegram.URL,
			Console: a.console,
			Client:  client,
		}),
		database.New(database.Config{
			DashboardURL: cfg.Database.DashboardURL,
			Console:      a.console,
		}),
		system.New(system.Config{
			Console:  a.console,
			Settings: a.settings,
			PSUtil:   a.psutil,
			Project: system.Project{
				Name:        cfg.Name,
				Description: app.Description,
				Version:     app.Version.String(),
				Commit:      app.Commit,
				Build:       app.Build,
				Address:     cfg.Address,
			},
		}),
	)
	if err != nil {
		return fmt.Errorf("unable to create panels: %w", err)
	}

	a.tabs = tabs

	if err := a.tabs.Activate(event.Target(cfg.Panels.Default)); err != nil {
		return fmt.Errorf("unable to activate panel '%s': %w", cfg.Panels.Default, err)
	}

	if cfg.Metrics.EnablePrometheus {
		metrics := prometheus.New()

		if err := metrics.Register(
			prometheus.NewUptimeCollector(cfg.Name, a.startedAt),
			prometheus.NewConsoleCollector(cfg.Name, a.console),
			prometheus.NewBridgeCollector(cfg.Name, a.bridge),
			prometheus.NewPanelsCollector(cfg.Name, a.tabs),
		); err != nil {
			return fmt.Errorf("unable to register metrics: %w", err)
		}

		a.prom = metrics
	}

	serverConfig := http.Config{
		Logger:    a.log.logger.main,
		LogBuffer: a.log.buffer,
		Console:   a.console,
		Bridge:    a.bridge,
		Tabs:      a.tabs,
		Form:      form,
		Gloria:    gloria.NewProxy(gloriaConfig),
		PSUtil:    a.psutil,
		Profiling: cfg.Debug.Profiling,
		Cors: http.CorsConfig{
			Origins: cfg.API.CORS.Origins,
		},
		About: http.AboutConfig{
			Name:      cfg.Name,
			ID:        cfg.ID,
			CreatedAt: cfg.CreatedAt,
		},
	}

	if a.prom != nil {
		serverConfig.Prometheus = a.prom
	}

	mainserverhandler, err := http.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("unable to create server: %w", err)
	}

	a.mainserver = &gohttp.Server{
		Addr:              cfg.Address,
		Handler:           mainserverhandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ErrorLog:          golog.New(a.log.logger.main.Debug(), "", 0),
	}

	sendError := func(err error) {
		if err == nil {
			return
		}

		select {
		case a.errorChan <- err:
		default:
		}
	}

	wgStart := sync.WaitGroup{}

	wgStart.Add(1)
	a.wgStop.Add(1)

	go func() {
		logger := a.log.logger.main

		defer func() {
			logger.Info().Log("Server exited")
			a.wgStop.Done()
		}()

		wgStart.Done()

		logger.Info().Log("Server started")

		err := a.mainserver.ListenAndServe()
		if err != nil && err != gohttp.ErrServerClosed {
			err = fmt.Errorf("HTTP server: %w", err)
		} else {
			err = nil
		}

		sendError(err)
	}()

	// Wait for the server to be started
	wgStart.Wait()

	a.console.Append(fmt.Sprintf("%s %s started", app.Description, app.Version.String()), console.SeveritySuccess)

	a.state = "running"

	return nil
}

func (a *api) Start(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		a.stop()
		return err
	}

	// Block until there's an error from the server or the context is done
	select {
	case err := <-a.errorChan:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (a *api) stop() {
	a.lock.Lock()
	defer a.lock.Unlock()

	logger := a.log.logger.core.WithField("action", "shutdown")

	if a.state == "idle" {
		logger.Info().Log("Complete")
		return
	}

	// Shutdown the HTTP server first, such that no new actions arrive
	if a.mainserver != nil {
		logger := a.log.logger.main
		logger.Info().Log("Stopping ...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mainserver.Shutdown(ctx); err != nil {
			logger.Error().WithError(err).Log("")
		}

		a.mainserver = nil
	}

	// Cancel running panel actions and wait for them
	if a.tabs != nil {
		logger.Info().Log("Stopping all panels ...")
		a.tabs.Close()
		a.tabs.Wait()
		a.tabs = nil
	}

	a.bridge = nil

	if a.prom != nil {
		a.prom.UnregisterAll()
		a.prom = nil
	}

	if a.settings != nil {
		if err := a.settings.Close(); err != nil {
			logger.Error().WithError(err).Log("Closing settings database")
		}
		a.settings = nil
	}

	// Stop gops agent
	agent.Close()

	// Wait for all server goroutines to exit
	logger.Info().Log("Waiting for all servers to stop ...")
	a.wgStop.Wait()

	// Drain error channel
	if a.errorChan != nil {
		close(a.errorChan)
		a.errorChan = nil
	}

	a.state = "idle"

	if a.undoMaxprocs != nil {
		a.undoMaxprocs()
		a.undoMaxprocs = nil
	}

	logger.Info().Log("Complete")
	logger.Close()
}

func (a *api) Stop() {
	a.log.logger.core.Info().Log("Shutdown requested ...")
	a.stop()
}

func (a *api) Destroy() {
	a.log.logger.core.Info().Log("Shutdown requested ...")
	a.stop()

	// Free the console
	if a.console != nil {
		a.console.Clear()
		a.console = nil
	}
}
