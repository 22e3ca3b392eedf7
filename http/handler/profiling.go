package handler

import (
	"net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"
)

// ProfilingHandler exposes the runtime profiles of net/http/pprof.
type ProfilingHandler struct{}

func NewProfiling() *ProfilingHandler {
	return &ProfilingHandler{}
}

// Register adds the profiling endpoints to r. The named profiles are served
// below /profiling/{name}, e.g. /profiling/heap.
// @Summary Retrieve profiling data from the application
// @Description Index of the runtime profiles. Only available if debug.profiling is enabled.
// @ID profiling
// @Produce text/html
// @Success 200 {string} string
// @Failure 404 {string} string
// @Router /profiling [get]
func (p *ProfilingHandler) Register(r *echo.Group) {
	r.GET("", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	r.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	r.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	r.Match([]string{"GET", "POST"}, "/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	r.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))

	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		r.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
}
