package store

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

// invalidFilename matches every character not allowed in export filenames.
var invalidFilename = regexp.MustCompile(`[^\w\-.() ]`)

// ExportData is the end-of-meeting artifact handed to the companion
// process that collects finished captures.
type ExportData struct {
	Title            string                  `json:"title"`
	MeetingStartTime string                  `json:"meeting_start_time"`
	MeetingEndTime   string                  `json:"meeting_end_time"`
	Transcript       []types.TranscriptEntry `json:"transcript"`
	ChatMessages     []types.ChatEntry       `json:"chat_messages"`
}

// Exporter writes meeting artifacts to the local filesystem.
type Exporter struct {
	outputDir string
}

// NewExporter creates an exporter rooted at outputDir.
func NewExporter(outputDir string) *Exporter {
	return &Exporter{outputDir: outputDir}
}

// Export saves the meeting JSON under a dated directory structure:
// out/2025/01/23/20250123_143022_weekly_sync.json
func (e *Exporter) Export(data *ExportData) (string, error) {
	now := time.Now()
	dateDir := filepath.Join(e.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create date directory: %v", err)
	}

	timestamp := now.Format("20060102_150405")
	name := SanitizeFilename(data.Title)
	if name == "" {
		name = "meeting"
	}
	jsonPath := filepath.Join(dateDir, fmt.Sprintf("%s_%s.json", timestamp, name))

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %v", err)
	}

	if err := os.WriteFile(jsonPath, encoded, 0644); err != nil {
		return "", fmt.Errorf("failed to save export: %v", err)
	}

	return jsonPath, nil
}

// Archive bundles the meeting JSON and the optional audio recording into a
// single tar file next to the JSON artifact. Missing inputs are skipped
// with a warning rather than failing the archive.
func (e *Exporter) Archive(jsonPath, audioPath string) (string, error) {
	tarPath := trimExt(jsonPath) + ".tar"

	out, err := os.Create(tarPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %v", err)
	}
	defer out.Close()

	tw := tar.NewWriter(out)
	defer tw.Close()

	for _, path := range []string{jsonPath, audioPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			log.Printf("File not found: %s - Skipping it.", path)
			continue
		}
		if err := addToTar(tw, path); err != nil {
			return "", err
		}
	}

	return tarPath, nil
}

// SanitizeFilename replaces characters that are unsafe in filenames with
// underscores and bounds the length.
func SanitizeFilename(name string) string {
	result := invalidFilename.ReplaceAllString(name, "_")
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}

// addToTar appends one file to the archive under its base name.
func addToTar(tw *tar.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %v", path, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %v", path, err)
	}
	header.Name = filepath.Base(path)

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %v", path, err)
	}
	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("failed to write %s into archive: %v", path, err)
	}
	return nil
}

// trimExt drops the file extension from path.
func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}
