package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	l := Noop()
	assert.NotPanics(t, func() {
		l.Debug("msg", Operation("parse"))
		l.Info("msg", FilePath("a.go"), EntityCount(3))
		l.Warn("msg", DurationMS(12.5))
		l.Error("msg", Err(errors.New("boom")))
	})
}

func TestNewLoggerWritesToProvidedFile(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()

	l := New(LevelDebug, w)
	l.Info("parse completed", Operation("ParseFile"), FilePath("widget.go"), EntityCount(4))
	w.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	out := buf.String()

	assert.Contains(t, out, "parse completed")
	assert.Contains(t, out, "widget.go")
}

func TestFieldConstructorsSetExpectedKeys(t *testing.T) {
	assert.Equal(t, "operation", Operation("x").key)
	assert.Equal(t, "duration_ms", DurationMS(1).key)
	assert.Equal(t, "file_path", FilePath("x").key)
	assert.Equal(t, "entity_count", EntityCount(1).key)
}
