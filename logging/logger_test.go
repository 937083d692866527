package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func TestMultiCore_TeesToBothWriters(t *testing.T) {
	var console, file syncBuffer

	core := NewMultiCoreWithWriters(zapcore.InfoLevel, &console, &file, true)
	logger := zap.New(core)

	logger.Info("capture started", zap.Uint32("pid", 1234))
	_ = logger.Sync()

	if console.Len() == 0 {
		t.Error("console writer received no output")
	}
	if file.Len() == 0 {
		t.Error("file writer received no output")
	}

	// File output must be JSON with the standard field names.
	var entry map[string]interface{}
	line := strings.TrimSpace(file.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v\n%s", err, line)
	}
	if entry[FieldMessage] != "capture started" {
		t.Errorf("file entry %q = %v, want %q", FieldMessage, entry[FieldMessage], "capture started")
	}
	if entry[FieldLevel] != "info" {
		t.Errorf("file entry %q = %v, want %q", FieldLevel, entry[FieldLevel], "info")
	}
}

func TestMultiCore_RespectsLevel(t *testing.T) {
	var console, file syncBuffer

	core := NewMultiCoreWithWriters(zapcore.InfoLevel, &console, &file, false)
	logger := zap.New(core)

	logger.Debug("below threshold")
	_ = logger.Sync()

	if file.Len() != 0 {
		t.Errorf("debug entry written despite info level: %s", file.String())
	}
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Info("ignored", zap.String("k", "v"))
	l.Warnw("ignored", "k", "v")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}
