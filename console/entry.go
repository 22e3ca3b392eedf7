package console

import (
	"strings"
	"time"
)

// Severity classifies an entry for presentation only.
//
// Only the four values below are recognized. The store coerces every other
// value to SeverityInfo when an entry is appended.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Severities lists the recognized severities.
var Severities = []Severity{SeverityInfo, SeveritySuccess, SeverityError, SeverityWarning}

// IsValid returns whether s is one of the recognized severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityError, SeverityWarning:
		return true
	}

	return false
}

// ParseSeverity is lenient about case and surrounding whitespace. Empty or
// unknown names result in SeverityInfo.
func ParseSeverity(name string) Severity {
	s := Severity(strings.ToLower(strings.TrimSpace(name)))
	if !s.IsValid() {
		return SeverityInfo
	}

	return s
}

// Entry is one status message. Entries are never modified after they have been
// appended; readers always receive copies.
type Entry struct {
	ID        string
	Message   string
	Severity  Severity
	Timestamp string    // Time of day as shown in the console
	Time      time.Time // Time of capture
}
