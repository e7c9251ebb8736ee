package logger

import "strings"

// Level is the severity a message is logged at. Messages below a logger's
// configured level are dropped.
type Level uint32

// Level constants, ordered from chattiest to silent.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelTags = map[Level]string{
	LevelTrace:    "TRC",
	LevelDebug:    "DBG",
	LevelInfo:     "INF",
	LevelWarn:     "WRN",
	LevelError:    "ERR",
	LevelCritical: "CRT",
}

var levelsByName = map[string]Level{
	"trace":    LevelTrace,
	"debug":    LevelDebug,
	"info":     LevelInfo,
	"warn":     LevelWarn,
	"error":    LevelError,
	"critical": LevelCritical,
	"off":      LevelOff,
}

// LevelFromString parses a level name, case-insensitively. The second return
// value is false when the name is not a known level.
func LevelFromString(s string) (Level, bool) {
	level, ok := levelsByName[strings.ToLower(s)]
	return level, ok
}

// String returns the three-letter tag used in log output
func (l Level) String() string {
	if tag, ok := levelTags[l]; ok {
		return tag
	}
	return "OFF"
}
