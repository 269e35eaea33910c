package record

import (
	"path/filepath"
	"testing"
)

func TestNewRecorderDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meeting.opus")

	r := NewRecorder(path, "")
	if r.OutputPath() != path {
		t.Errorf("unexpected output path: %s", r.OutputPath())
	}
	if r.bitRate != "256k" {
		t.Errorf("empty bit rate should default to 256k, got %s", r.bitRate)
	}
	if r.Started() {
		t.Error("fresh recorder should not report started")
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	r := NewRecorder(filepath.Join(t.TempDir(), "meeting.opus"), "128k")
	// Must not panic or block
	r.Stop()
	if r.Started() {
		t.Error("recorder should remain stopped")
	}
}
