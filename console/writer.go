package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quickshop/bothub/log"
)

type logWriter struct {
	store *Store
	level log.Level
}

// NewLogWriter returns a log.Writer that mirrors application log events with the
// given or a more severe level into the console. Errors become SeverityError,
// warnings SeverityWarning and everything else SeverityInfo.
func NewLogWriter(store *Store, level log.Level) log.Writer {
	return &logWriter{
		store: store,
		level: level,
	}
}

func (w *logWriter) Write(e *log.Event) error {
	if w.level < e.Level || e.Level == log.Lsilent {
		return nil
	}

	severity := SeverityInfo

	switch e.Level {
	case log.Lerror:
		severity = SeverityError
	case log.Lwarn:
		severity = SeverityWarning
	}

	w.store.Append(formatEvent(e), severity)

	return nil
}

func (w *logWriter) Close() {}

func formatEvent(e *log.Event) string {
	var b strings.Builder

	if len(e.Component) != 0 {
		b.WriteString("[" + e.Component + "] ")
	}

	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	return strings.TrimSpace(b.String())
}
