package logger

import (
	"bytes"
	"strings"
	"testing"
)

type closableBuffer struct {
	bytes.Buffer
}

func (c *closableBuffer) Close() error { return nil }

func TestBackendFiltersByWriterLevel(t *testing.T) {
	backend := NewBackend()
	everything := &closableBuffer{}
	warningsOnly := &closableBuffer{}
	if err := backend.AddLogWriter(everything, LevelTrace); err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	if err := backend.AddLogWriter(warningsOnly, LevelWarn); err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	if err := backend.Run(); err != nil {
		t.Fatalf("Run: %s", err)
	}
	if err := backend.AddLogWriter(&closableBuffer{}, LevelInfo); err == nil {
		t.Fatal("a writer was added to a running backend")
	}

	log := backend.Logger("TEST")
	log.SetLevel(LevelDebug)
	log.Debugf("quiet detail")
	log.Warnf("something odd")
	log.Tracef("below the logger level")
	backend.Close()

	full := everything.String()
	if !strings.Contains(full, "quiet detail") || !strings.Contains(full, "something odd") {
		t.Fatalf("the trace writer is missing entries: %q", full)
	}
	if strings.Contains(full, "below the logger level") {
		t.Fatalf("an entry below the logger's level was written: %q", full)
	}
	if !strings.Contains(full, "[DBG] TEST") {
		t.Fatalf("entries are missing the level tag or subsystem tag: %q", full)
	}

	warnings := warningsOnly.String()
	if strings.Contains(warnings, "quiet detail") {
		t.Fatalf("the warn writer received a debug entry: %q", warnings)
	}
	if !strings.Contains(warnings, "something odd") {
		t.Fatalf("the warn writer is missing its entry: %q", warnings)
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		name     string
		expected Level
		ok       bool
	}{
		{"trace", LevelTrace, true},
		{"Info", LevelInfo, true},
		{"CRITICAL", LevelCritical, true},
		{"off", LevelOff, true},
		{"loud", LevelInfo, false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.name)
		if ok != test.ok {
			t.Errorf("%s: expected ok=%t, got %t", test.name, test.ok, ok)
			continue
		}
		if ok && level != test.expected {
			t.Errorf("%s: expected level %s, got %s", test.name, test.expected, level)
		}
	}
}
