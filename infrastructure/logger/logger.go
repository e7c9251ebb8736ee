package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const normalLogSize = 512

// logEntry is a single formatted log message together with the level it was
// logged at.
type logEntry struct {
	log   []byte
	level Level
}

// Logger is a subsystem logger backed by a Backend. Loggers are safe for
// concurrent use. Messages logged before the backend is running are dropped.
type Logger struct {
	lvl       Level // used atomically, must stay first for alignment
	tag       string
	b         *Backend
	writeChan chan<- logEntry
}

// Level returns the current logging level
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32((*uint32)(&l.lvl)))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(logLevel Level) {
	atomic.StoreUint32((*uint32)(&l.lvl), uint32(logLevel))
}

// Trace formats message using the default formats for its operands and writes
// to log with LevelTrace.
func (l *Logger) Trace(args ...interface{}) {
	l.print(LevelTrace, args...)
}

// Tracef formats message according to format specifier and writes to
// to log with LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.printf(LevelTrace, format, args...)
}

// Debug formats message using the default formats for its operands and writes
// to log with LevelDebug.
func (l *Logger) Debug(args ...interface{}) {
	l.print(LevelDebug, args...)
}

// Debugf formats message according to format specifier and writes to
// log with LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.printf(LevelDebug, format, args...)
}

// Info formats message using the default formats for its operands and writes
// to log with LevelInfo.
func (l *Logger) Info(args ...interface{}) {
	l.print(LevelInfo, args...)
}

// Infof formats message according to format specifier and writes to
// log with LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.printf(LevelInfo, format, args...)
}

// Warn formats message using the default formats for its operands and writes
// to log with LevelWarn.
func (l *Logger) Warn(args ...interface{}) {
	l.print(LevelWarn, args...)
}

// Warnf formats message according to format specifier and writes to
// to log with LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf(LevelWarn, format, args...)
}

// Error formats message using the default formats for its operands and writes
// to log with LevelError.
func (l *Logger) Error(args ...interface{}) {
	l.print(LevelError, args...)
}

// Errorf formats message according to format specifier and writes to
// to log with LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(LevelError, format, args...)
}

// Critical formats message using the default formats for its operands and
// writes to log with LevelCritical.
func (l *Logger) Critical(args ...interface{}) {
	l.print(LevelCritical, args...)
}

// Criticalf formats message according to format specifier and writes to
// log with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.printf(LevelCritical, format, args...)
}

func (l *Logger) printf(logLevel Level, format string, args ...interface{}) {
	if logLevel < l.Level() {
		return
	}
	l.write(logLevel, fmt.Sprintf(format, args...))
}

func (l *Logger) print(logLevel Level, args ...interface{}) {
	if logLevel < l.Level() {
		return
	}
	l.write(logLevel, fmt.Sprint(args...))
}

func (l *Logger) write(logLevel Level, msg string) {
	if !l.b.IsRunning() {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	buf := make([]byte, 0, normalLogSize)
	buf = append(buf, timestamp...)
	buf = append(buf, " ["...)
	buf = append(buf, logLevel.String()...)
	buf = append(buf, "] "...)
	buf = append(buf, l.tag...)
	buf = append(buf, ": "...)
	buf = append(buf, msg...)
	buf = append(buf, '\n')

	l.writeChan <- logEntry{log: buf, level: logLevel}
}

// LogAndMeasureExecutionTime logs the start of a named operation at the debug
// level and returns a function that logs its duration when called
func LogAndMeasureExecutionTime(log *Logger, operation string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s started", operation)
	return func() {
		log.Debugf("%s finished in %s", operation, time.Since(start))
	}
}

var (
	backendLog       = NewBackend()
	subsystemMutex   sync.Mutex
	subsystemLoggers = make(map[string]*Logger)
)

// RegisterSubSystem returns the logger for the given subsystem tag, creating
// it on the shared backend if it does not exist yet. Registered loggers start
// at the info level.
func RegisterSubSystem(subsystemTag string) *Logger {
	subsystemMutex.Lock()
	defer subsystemMutex.Unlock()

	if subsystemLogger, ok := subsystemLoggers[subsystemTag]; ok {
		return subsystemLogger
	}
	subsystemLogger := backendLog.Logger(subsystemTag)
	subsystemLogger.SetLevel(LevelInfo)
	subsystemLoggers[subsystemTag] = subsystemLogger
	return subsystemLogger
}

// SetLogLevels sets the logging level of every registered subsystem
func SetLogLevels(logLevel Level) {
	subsystemMutex.Lock()
	defer subsystemMutex.Unlock()

	for _, subsystemLogger := range subsystemLoggers {
		subsystemLogger.SetLevel(logLevel)
	}
}

// ParseAndSetLogLevels parses the given level string and applies it to every
// registered subsystem
func ParseAndSetLogLevels(logLevel string) error {
	level, ok := LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("the log level %s doesn't exist", logLevel)
	}
	SetLogLevels(level)
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// InitLog attaches the main and error log files plus stdout/stderr writers to
// the shared backend and starts it
func InitLog(logFile, errLogFile string) error {
	err := backendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		return errors.Errorf("error adding log file %s as log rotator for level %s: %s",
			logFile, LevelTrace, err)
	}
	err = backendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		return errors.Errorf("error adding log file %s as log rotator for level %s: %s",
			errLogFile, LevelWarn, err)
	}
	err = backendLog.AddLogWriter(nopWriteCloser{os.Stdout}, LevelInfo)
	if err != nil {
		return errors.Errorf("error adding stdout to the logger: %s", err)
	}
	err = backendLog.AddLogWriter(nopWriteCloser{os.Stderr}, LevelWarn)
	if err != nil {
		return errors.Errorf("error adding stderr to the logger: %s", err)
	}
	return backendLog.Run()
}

// Close shuts the shared backend down, flushing any pending writes
func Close() {
	backendLog.Close()
}
