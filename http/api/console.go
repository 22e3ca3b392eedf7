package api

import (
	"github.com/quickshop/bothub/console"
)

// ConsoleEntry is one status message of the console
type ConsoleEntry struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Severity  string `json:"severity" enums:"info,success,error,warning" jsonschema:"enum=info,enum=success,enum=error,enum=warning"`
	Timestamp string `json:"timestamp"`
	Time      int64  `json:"time" format:"int64"` // Unix milliseconds
}

// Unmarshal converts a console entry to its API representation
func (e *ConsoleEntry) Unmarshal(entry console.Entry) {
	e.ID = entry.ID
	e.Message = entry.Message
	e.Severity = string(entry.Severity)
	e.Timestamp = entry.Timestamp
	e.Time = entry.Time.UnixMilli()
}

// ConsoleAppend is a new message for the console. An unknown or missing
// severity results in "info".
type ConsoleAppend struct {
	Message  string `json:"message" validate:"required" jsonschema:"minLength=1"`
	Severity string `json:"severity"`
}

// ConsoleStats are the counters of the console
type ConsoleStats struct {
	Entries   int               `json:"entries"`
	Appended  map[string]uint64 `json:"appended"`
	Cleared   uint64            `json:"cleared"`
	Evicted   uint64            `json:"evicted"`
	Observers int               `json:"observers"`
}

// ConsoleEvent is one message of the live console stream. A "list" event
// carries all current entries and replaces what the client has, e.g. after
// the console has been cleared. An "append" event carries new entries.
type ConsoleEvent struct {
	Event   string         `json:"event" enums:"list,append,keepalive" jsonschema:"enum=list,enum=append,enum=keepalive"`
	Entries []ConsoleEntry `json:"entries"`
}
