// Package http implements the HTTP API of the dashboard.
package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/http/errorhandler"
	"github.com/quickshop/bothub/http/handler"
	api "github.com/quickshop/bothub/http/handler/api"
	httplog "github.com/quickshop/bothub/http/log"
	"github.com/quickshop/bothub/http/validator"
	"github.com/quickshop/bothub/log"
	"github.com/quickshop/bothub/panel"
	"github.com/quickshop/bothub/panel/gloria"
	"github.com/quickshop/bothub/prometheus"
	"github.com/quickshop/bothub/psutil"

	mwcors "github.com/quickshop/bothub/http/middleware/cors"
	mwlog "github.com/quickshop/bothub/http/middleware/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Config struct {
	Logger     log.Logger
	LogBuffer  log.BufferWriter
	Console    *console.Store
	Bridge     *event.Bridge
	Tabs       *panel.Tabs
	Form       *panel.Form
	Gloria     gloria.Proxy
	PSUtil     psutil.Util
	Prometheus prometheus.Reader
	Profiling  bool
	Cors       CorsConfig
	About      AboutConfig
}

type CorsConfig struct {
	Origins []string
}

type AboutConfig struct {
	Name      string
	ID        string
	CreatedAt time.Time
}

type Server interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

type server struct {
	logger log.Logger

	handler struct {
		about     *api.AboutHandler
		profiling *handler.ProfilingHandler
		ping      *handler.PingHandler
	}

	v1handler struct {
		log     *api.LogHandler
		console *api.ConsoleHandler
		panels  *api.PanelsHandler
		actions *api.ActionsHandler
		gloria  *api.GloriaHandler
	}

	middleware struct {
		log  echo.MiddlewareFunc
		cors echo.MiddlewareFunc
	}

	metrics   http.Handler
	profiling bool

	router *echo.Echo
}

func NewServer(config Config) (Server, error) {
	if config.Console == nil {
		return nil, fmt.Errorf("no console provided")
	}

	if config.Bridge == nil {
		return nil, fmt.Errorf("no event bridge provided")
	}

	if config.Tabs == nil || config.Form == nil {
		return nil, fmt.Errorf("no panels provided")
	}

	s := &server{
		logger:    config.Logger,
		profiling: config.Profiling,
	}

	if s.logger == nil {
		s.logger = log.New("HTTP")
	}

	s.handler.about = api.NewAbout(
		config.About.Name,
		config.About.ID,
		config.About.CreatedAt,
		config.PSUtil,
	)

	if config.Prometheus != nil {
		s.metrics = config.Prometheus.HTTPHandler()
	}

	if config.Profiling {
		s.handler.profiling = handler.NewProfiling()
	}

	s.handler.ping = handler.NewPing()

	s.v1handler.log = api.NewLog(
		config.LogBuffer,
	)

	s.v1handler.console = api.NewConsole(
		config.Console,
		config.Cors.Origins,
		s.logger,
	)

	s.v1handler.panels = api.NewPanels(
		config.Tabs,
		config.Form,
	)

	s.v1handler.actions = api.NewActions(
		config.Bridge,
		config.Tabs,
	)

	if config.Gloria != nil {
		s.v1handler.gloria = api.NewGloria(
			config.Gloria,
			config.Tabs,
			config.Form,
		)
	}

	s.middleware.log = mwlog.NewWithConfig(mwlog.Config{
		Logger: s.logger,
	})

	if len(config.Cors.Origins) != 0 {
		corsmiddleware, err := mwcors.NewWithConfig(mwcors.Config{
			Prefixes: map[string][]string{
				"/api": config.Cors.Origins,
			},
		})
		if err != nil {
			return nil, err
		}

		s.middleware.cors = corsmiddleware
	}

	s.router = echo.New()
	s.router.HTTPErrorHandler = errorhandler.HTTPErrorHandler
	s.router.Validator = validator.New()
	s.router.Use(s.middleware.log)
	s.router.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			rows := strings.Split(string(stack), "\n")
			s.logger.Error().WithField("stack", rows).Log("recovered from a panic")
			return nil
		},
	}))

	s.router.HideBanner = true
	s.router.HidePort = true

	s.router.Logger.SetOutput(httplog.NewWrapper(s.logger))

	if s.middleware.cors != nil {
		s.router.Use(s.middleware.cors)
	}

	s.router.Pre(middleware.RemoveTrailingSlash())

	s.setRoutes()

	return s, nil
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) setRoutes() {
	gzipMiddleware := middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 1,
		Skipper: func(c echo.Context) bool {
			// Streams are flushed per event.
			return strings.HasPrefix(c.Path(), "/api/v1/console/")
		},
	})

	// API router group
	api := s.router.Group("/api")

	api.GET("", s.handler.about.About)

	// Prometheus metrics
	if s.metrics != nil {
		s.router.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	// Health check
	s.router.GET("/ping", s.handler.ping.Ping)
	s.router.HEAD("/ping", s.handler.ping.Ping)

	// Profiling routes
	if s.profiling {
		prof := s.router.Group("/profiling")

		s.handler.profiling.Register(prof)
	}

	// APIv1 router group
	v1 := api.Group("/v1")

	v1.Use(gzipMiddleware)

	s.setRoutesV1(v1)
}

func (s *server) setRoutesV1(v1 *echo.Group) {
	// v1 Log
	v1.GET("/log", s.v1handler.log.Log)

	// v1 Console
	v1.GET("/console", s.v1handler.console.List)
	v1.POST("/console", s.v1handler.console.Append)
	v1.DELETE("/console", s.v1handler.console.Clear)
	v1.GET("/console/stream", s.v1handler.console.Stream)
	v1.GET("/console/ws", s.v1handler.console.Websocket)

	// v1 Panels
	v1.GET("/panels", s.v1handler.panels.List)
	v1.GET("/panels/active", s.v1handler.panels.GetActive)
	v1.PUT("/panels/active", s.v1handler.panels.SetActive)
	v1.GET("/panels/:id", s.v1handler.panels.Get)
	v1.PUT("/panels/:id/settings", s.v1handler.panels.SetSettings)

	if s.v1handler.gloria != nil {
		v1.POST("/panels/gloria/proxy", s.v1handler.gloria.Proxy)
	}

	// v1 Actions
	v1.POST("/actions", s.v1handler.actions.Publish)
}
