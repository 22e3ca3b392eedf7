package value

import (
	"fmt"
	"strings"

	"github.com/quickshop/bothub/log"
)

// log level name

type LogLevel string

func NewLogLevel(p *string, val string) *LogLevel {
	*p = val

	return (*LogLevel)(p)
}

func (l *LogLevel) Set(val string) error {
	val = strings.ToLower(strings.TrimSpace(val))

	if _, ok := log.ParseLevel(val); !ok {
		return fmt.Errorf("unknown log level %q", val)
	}

	*l = LogLevel(val)
	return nil
}

func (l *LogLevel) String() string {
	return string(*l)
}

func (l *LogLevel) Validate() error {
	if _, ok := log.ParseLevel(string(*l)); !ok {
		return fmt.Errorf("unknown log level %q", string(*l))
	}

	return nil
}

func (l *LogLevel) IsEmpty() bool {
	return len(string(*l)) == 0
}
