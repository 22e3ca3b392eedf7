package api

// LogEvent is one event of the application log in raw format
type LogEvent map[string]interface{}
