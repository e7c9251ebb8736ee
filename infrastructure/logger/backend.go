package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const (
	logRotateThresholdKB = 100 * 1000
	logRotateMaxRolls    = 8
)

// Backend fans formatted log entries out to a set of writers, each with its
// own minimum level. Writes from all subsystem loggers are serialized through
// a single goroutine, so the writers themselves need no locking.
type Backend struct {
	isRunning uint32
	writers   []leveledWriter
	writeChan chan logEntry
	drained   sync.Mutex
}

type leveledWriter struct {
	io.WriteCloser
	minLevel Level
}

// NewBackend creates an idle backend with no writers attached
func NewBackend() *Backend {
	return &Backend{writeChan: make(chan logEntry)}
}

// AddLogFile attaches a rotating log file that receives entries at or above
// minLevel, creating the file and its directory as needed. Rotated files are
// capped at 100MB with the last 8 rolls kept.
func (b *Backend) AddLogFile(logFile string, minLevel Level) error {
	if b.IsRunning() {
		return errors.New("cannot add log files to a running backend")
	}
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "creating log directory %s", logDir)
		}
	}
	fileRotator, err := rotator.New(logFile, logRotateThresholdKB, false, logRotateMaxRolls)
	if err != nil {
		return errors.Wrapf(err, "creating rotator for %s", logFile)
	}
	b.writers = append(b.writers, leveledWriter{WriteCloser: fileRotator, minLevel: minLevel})
	return nil
}

// AddLogWriter attaches a writer that receives entries at or above minLevel
func (b *Backend) AddLogWriter(writer io.WriteCloser, minLevel Level) error {
	if b.IsRunning() {
		return errors.New("cannot add writers to a running backend")
	}
	b.writers = append(b.writers, leveledWriter{WriteCloser: writer, minLevel: minLevel})
	return nil
}

// Run starts draining the write channel. All writers must be attached before
// the backend runs.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.New("the backend is already running")
	}
	go b.drain()
	return nil
}

func (b *Backend) drain() {
	defer atomic.StoreUint32(&b.isRunning, 0)
	b.drained.Lock()
	defer b.drained.Unlock()

	for entry := range b.writeChan {
		for _, writer := range b.writers {
			if entry.level >= writer.minLevel {
				_, _ = writer.Write(entry.log)
			}
		}
	}
}

// IsRunning reports whether Run has been called
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) != 0
}

// Close stops the backend once every pending entry is written, then closes
// the attached writers
func (b *Backend) Close() {
	close(b.writeChan)
	// The drained mutex is held for as long as entries are being written.
	b.drained.Lock()
	defer b.drained.Unlock()
	for _, writer := range b.writers {
		_ = writer.Close()
	}
}

// Logger returns a subsystem logger writing through this backend. The tag is
// included in every message; the logger starts muted.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{lvl: LevelOff, tag: subsystemTag, b: b, writeChan: b.writeChan}
}
