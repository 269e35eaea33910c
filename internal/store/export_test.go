package store

import (
	"archive/tar"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

func TestExportWritesDatedJSON(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir)

	data := &ExportData{
		Title:            "Weekly Sync",
		MeetingStartTime: "2025-01-23T14:00:00.000Z",
		MeetingEndTime:   "2025-01-23T15:00:00.000Z",
		Transcript: []types.TranscriptEntry{
			{PersonName: "Alice", TimeStamp: "2025-01-23T14:30:22.123Z", PersonTranscript: "hello"},
		},
		ChatMessages: []types.ChatEntry{},
	}

	jsonPath, err := exporter.Export(data)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	rel, err := filepath.Rel(dir, jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 4 {
		t.Errorf("expected year/month/day/file layout, got %s", rel)
	}
	if !strings.HasSuffix(jsonPath, "_Weekly Sync.json") {
		t.Errorf("unexpected file name: %s", jsonPath)
	}

	body, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded ExportData
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.Title != "Weekly Sync" || len(decoded.Transcript) != 1 {
		t.Errorf("export content mismatch: %+v", decoded)
	}
}

func TestExportEmptyTitleFallsBack(t *testing.T) {
	exporter := NewExporter(t.TempDir())

	jsonPath, err := exporter.Export(&ExportData{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasSuffix(jsonPath, "_meeting.json") {
		t.Errorf("empty title should fall back to meeting, got %s", jsonPath)
	}
}

func TestArchiveBundlesArtifacts(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir)

	jsonPath := filepath.Join(dir, "capture.json")
	audioPath := filepath.Join(dir, "capture.opus")
	if err := os.WriteFile(jsonPath, []byte(`{"title":"x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(audioPath, []byte("opusdata"), 0644); err != nil {
		t.Fatal(err)
	}

	tarPath, err := exporter.Archive(jsonPath, audioPath)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if filepath.Ext(tarPath) != ".tar" {
		t.Errorf("unexpected archive path: %s", tarPath)
	}

	names := readTarNames(t, tarPath)
	if len(names) != 2 || names[0] != "capture.json" || names[1] != "capture.opus" {
		t.Errorf("unexpected archive members: %v", names)
	}
}

func TestArchiveSkipsMissingAudio(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir)

	jsonPath := filepath.Join(dir, "capture.json")
	if err := os.WriteFile(jsonPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	tarPath, err := exporter.Archive(jsonPath, filepath.Join(dir, "missing.opus"))
	if err != nil {
		t.Fatalf("Archive should skip missing inputs: %v", err)
	}

	names := readTarNames(t, tarPath)
	if len(names) != 1 || names[0] != "capture.json" {
		t.Errorf("unexpected archive members: %v", names)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Weekly Sync", "Weekly Sync"},
		{"a/b\\c:d", "a_b_c_d"},
		{"q?*<>|", "q_____"},
		{"keep-this.v2 (draft)", "keep-this.v2 (draft)"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	long := strings.Repeat("x", 150)
	if got := SanitizeFilename(long); len(got) != 100 {
		t.Errorf("long names should truncate to 100, got %d", len(got))
	}
}

func readTarNames(t *testing.T, tarPath string) []string {
	t.Helper()
	f, err := os.Open(tarPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var names []string
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, hdr.Name)
	}
	return names
}
