package api

import (
	"net/http"
	"strings"

	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/handler/util"
	"github.com/quickshop/bothub/log"

	"github.com/labstack/echo/v4"
)

// The LogHandler type provides handler functions for reading the application log
type LogHandler struct {
	buffer log.BufferWriter
}

// NewLog return a new Log type. You have to provide log buffer.
func NewLog(buffer log.BufferWriter) *LogHandler {
	l := &LogHandler{
		buffer: buffer,
	}

	if l.buffer == nil {
		l.buffer = log.NewBufferWriter(log.Lsilent, 1)
	}

	return l
}

// Log returns the last log lines of the application
// @Summary Application log
// @Description Get the last log lines of the application
// @ID log
// @Param format query string false "Format of the list of log events (*console, raw)"
// @Param level query string false "Most verbose level to include (error, warn, info, *debug)"
// @Produce json
// @Success 200 {array} api.LogEvent "application log"
// @Success 200 {array} string "application log"
// @Failure 400 {object} api.Error
// @Router /api/v1/log [get]
func (p *LogHandler) Log(c echo.Context) error {
	format := util.DefaultQuery(c, "format", "console")

	level := log.Ldebug
	if name := util.DefaultQuery(c, "level", ""); len(name) != 0 {
		var ok bool
		level, ok = log.ParseLevel(name)
		if !ok {
			return api.Err(http.StatusBadRequest, "", "unknown log level: %s", name)
		}
	}

	events := []*log.Event{}
	for _, e := range p.buffer.Events() {
		if e.Level > level {
			continue
		}

		events = append(events, e)
	}

	if format == "raw" {
		log := make([]api.LogEvent, len(events))

		for i, e := range events {
			e.Data["ts"] = e.Time
			e.Data["level"] = e.Level.String()
			e.Data["component"] = e.Component

			if len(e.Caller) != 0 {
				e.Data["caller"] = e.Caller
			}

			if len(e.Message) != 0 {
				e.Data["message"] = e.Message
			}

			log[i] = api.LogEvent(e.Data)
		}

		return c.JSON(http.StatusOK, log)
	}

	formatter := log.NewConsoleFormatter(false)

	log := make([]string, len(events))

	for i, e := range events {
		log[i] = strings.TrimSpace(formatter.String(e))
	}

	return c.JSON(http.StatusOK, log)
}
