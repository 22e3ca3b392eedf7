package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/encoding/json"
	"github.com/quickshop/bothub/glob"
	"github.com/quickshop/bothub/http/api"
	"github.com/quickshop/bothub/http/handler/util"
	"github.com/quickshop/bothub/log"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// The ConsoleHandler type provides handler functions for reading and writing
// the status console.
type ConsoleHandler struct {
	console  *console.Store
	upgrader websocket.Upgrader
	logger   log.Logger

	keepalive time.Duration
}

// NewConsole returns a new Console type. Websocket connections are accepted
// from the given origins, "*" allows any origin.
func NewConsole(store *console.Store, origins []string, logger log.Logger) *ConsoleHandler {
	h := &ConsoleHandler{
		console:   store,
		logger:    logger,
		keepalive: 5 * time.Second,
	}

	if h.logger == nil {
		h.logger = log.New("")
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if len(origin) == 0 {
				return true
			}

			for _, o := range origins {
				if o == "*" || o == origin {
					return true
				}
			}

			return false
		},
	}

	return h
}

// List returns the entries of the console
// @Summary List the console entries
// @Description List the entries of the status console, oldest first
// @ID console-list
// @Produce json
// @Param severity query string false "Comma separated list of severities (info, success, error, warning)"
// @Param pattern query string false "Glob pattern for the message, case insensitive"
// @Success 200 {array} api.ConsoleEntry
// @Failure 400 {object} api.Error
// @Router /api/v1/console [get]
func (h *ConsoleHandler) List(c echo.Context) error {
	filter, err := newConsoleFilter(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, filter.apply(h.console.Entries()))
}

// Append adds a message to the console
// @Summary Add a console entry
// @Description Add a message to the status console. An unknown severity results in info.
// @ID console-append
// @Accept json
// @Produce json
// @Param entry body api.ConsoleAppend true "Message"
// @Success 201 {object} api.ConsoleEntry
// @Failure 400 {object} api.Error
// @Router /api/v1/console [post]
func (h *ConsoleHandler) Append(c echo.Context) error {
	entry := api.ConsoleAppend{}

	if err := util.ShouldBindJSON(c, &entry); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid JSON: %s", err.Error())
	}

	e := api.ConsoleEntry{}
	e.Unmarshal(h.console.AppendEntry(entry.Message, console.ParseSeverity(entry.Severity)))

	return c.JSON(http.StatusCreated, e)
}

// Clear removes all entries from the console
// @Summary Clear the console
// @Description Remove all entries from the status console
// @ID console-clear
// @Success 204
// @Router /api/v1/console [delete]
func (h *ConsoleHandler) Clear(c echo.Context) error {
	h.console.Clear()

	return c.NoContent(http.StatusNoContent)
}

// Stream returns a stream of console events
// @Summary Stream of console events
// @Description Stream of the console. The first event lists all current entries.
// @ID console-stream
// @Produce text/event-stream
// @Produce json-stream
// @Param severity query string false "Comma separated list of severities (info, success, error, warning)"
// @Param pattern query string false "Glob pattern for the message, case insensitive"
// @Success 200 {object} api.ConsoleEvent
// @Failure 400 {object} api.Error
// @Router /api/v1/console/stream [get]
func (h *ConsoleHandler) Stream(c echo.Context) error {
	filter, err := newConsoleFilter(c)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	req := c.Request()
	reqctx := req.Context()

	contentType := "text/event-stream"
	accept := req.Header.Get(echo.HeaderAccept)
	if strings.Contains(accept, "application/x-json-stream") {
		contentType = "application/x-json-stream"
	}

	feed := newConsoleFeed(h.console)
	defer feed.close()

	res := c.Response()

	res.Header().Set(echo.HeaderContentType, contentType+"; charset=UTF-8")
	res.Header().Set(echo.HeaderCacheControl, "no-store")
	res.Header().Set(echo.HeaderConnection, "close")
	res.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(res)
	enc.SetIndent("", "")

	write := func(event api.ConsoleEvent) error {
		if contentType == "text/event-stream" {
			res.Write([]byte("event: " + event.Event + "\ndata: "))
			if err := enc.Encode(event); err != nil {
				return err
			}
			res.Write([]byte("\n"))
		} else {
			if err := enc.Encode(event); err != nil {
				return err
			}
		}

		res.Flush()

		return nil
	}

	keepalive := func() {
		if contentType == "text/event-stream" {
			res.Write([]byte(":keepalive\n\n"))
		} else {
			res.Write([]byte("{\"event\":\"keepalive\"}\n"))
		}

		res.Flush()
	}

	if err := write(filter.event(feed.initial())); err != nil {
		return nil
	}

	for {
		select {
		case <-reqctx.Done():
			return nil
		case <-ticker.C:
			keepalive()
		case entries := <-feed.snapshots:
			event, ok := feed.next(entries)
			if !ok {
				continue
			}

			out := filter.event(event)
			if out.Event == "append" && len(out.Entries) == 0 {
				continue
			}

			if err := write(out); err != nil {
				h.logger.Debug().WithError(err).Log("Console stream closed")
				return nil
			}
		}
	}
}

// Websocket streams console events over a websocket connection
// @Summary Console events over websocket
// @Description Same events as the console stream, as websocket text messages.
// @ID console-websocket
// @Param severity query string false "Comma separated list of severities (info, success, error, warning)"
// @Param pattern query string false "Glob pattern for the message, case insensitive"
// @Success 101
// @Failure 400 {object} api.Error
// @Router /api/v1/console/ws [get]
func (h *ConsoleHandler) Websocket(c echo.Context) error {
	filter, err := newConsoleFilter(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader already replied to the client.
		return nil
	}
	defer conn.Close()

	feed := newConsoleFeed(h.console)
	defer feed.close()

	// Incoming messages are ignored, reading is only necessary to
	// process control frames and to notice a closed connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	if err := conn.WriteJSON(filter.event(feed.initial())); err != nil {
		return nil
	}

	for {
		select {
		case <-closed:
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.keepalive)); err != nil {
				return nil
			}
		case entries := <-feed.snapshots:
			event, ok := feed.next(entries)
			if !ok {
				continue
			}

			out := filter.event(event)
			if out.Event == "append" && len(out.Entries) == 0 {
				continue
			}

			if err := conn.WriteJSON(out); err != nil {
				h.logger.Debug().WithError(err).Log("Console websocket closed")
				return nil
			}
		}
	}
}

type consoleFilter struct {
	severities map[console.Severity]struct{}
	pattern    glob.Glob
}

func newConsoleFilter(c echo.Context) (*consoleFilter, error) {
	f := &consoleFilter{}

	if s := util.DefaultQuery(c, "severity", ""); len(s) != 0 {
		f.severities = map[console.Severity]struct{}{}

		for _, name := range strings.Split(s, ",") {
			severity := console.Severity(strings.ToLower(strings.TrimSpace(name)))
			if !severity.IsValid() {
				return nil, api.Err(http.StatusBadRequest, "", "unknown severity: %s", name)
			}

			f.severities[severity] = struct{}{}
		}
	}

	if pattern := util.DefaultQuery(c, "pattern", ""); len(pattern) != 0 {
		g, err := glob.CompileFold(pattern)
		if err != nil {
			return nil, api.Err(http.StatusBadRequest, "", "invalid pattern: %s", err.Error())
		}

		f.pattern = g
	}

	return f, nil
}

func (f *consoleFilter) match(e console.Entry) bool {
	if f.severities != nil {
		if _, ok := f.severities[e.Severity]; !ok {
			return false
		}
	}

	if f.pattern != nil {
		if !f.pattern.Match(e.Message) {
			return false
		}
	}

	return true
}

func (f *consoleFilter) apply(entries []console.Entry) []api.ConsoleEntry {
	list := []api.ConsoleEntry{}

	for _, e := range entries {
		if !f.match(e) {
			continue
		}

		entry := api.ConsoleEntry{}
		entry.Unmarshal(e)

		list = append(list, entry)
	}

	return list
}

func (f *consoleFilter) event(e consoleEvent) api.ConsoleEvent {
	return api.ConsoleEvent{
		Event:   e.name,
		Entries: f.apply(e.entries),
	}
}
