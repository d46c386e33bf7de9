// Package corelog is a small leveled, structured logger adapted from
// std/log/level.go in github.com/named-data/ndnd, in the calling
// convention that repo uses throughout (e.g. fw/mgmt/rib.go's
// `core.Log.Info(r, "Created route", "name", ..., "faceid", ...)`):
// every call site passes the emitting component as the first argument and
// a flat list of key/value pairs after the message.
package corelog

import "fmt"

type Level int

const LevelTrace Level = -8
const LevelDebug Level = -4
const LevelInfo Level = 0
const LevelWarn Level = 4
const LevelError Level = 8
const LevelFatal Level = 12

// ParseLevel parses a string representation of a log level (TRACE, DEBUG,
// INFO, WARN, ERROR, FATAL) into a Level value, returning an error for
// invalid inputs.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level: %s", s)
}

// String returns the human-readable representation of level.
func (level Level) String() string {
	switch level {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
