// Package store persists capture state locally: a key-value mirror of the
// in-memory session written incrementally during the meeting, a meetings
// history table, and the end-of-meeting export artifacts.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Mirror keys written during capture. operationMode is a read-only input
// set by whoever launches the capture.
const (
	KeyUserName              = "userName"
	KeyTranscript            = "transcript"
	KeyChatMessages          = "chatMessages"
	KeyMeetingTitle          = "meetingTitle"
	KeyMeetingStartTimeStamp = "meetingStartTimeStamp"
	KeyExtensionStatus       = "extensionStatusJSON"
	KeyOperationMode         = "operationMode"
	KeyMeetingTab            = "meetingTabId"
)

// ErrKeyNotFound indicates the mirror has no value for a key.
var ErrKeyNotFound = errors.New("key not found")

// Store handles SQLite database operations for the capture session.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the capture database.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meetings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		started_at TEXT,
		ended_at TEXT,
		transcript_count INTEGER,
		chat_count INTEGER,
		archive_path TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_meetings_started_at ON meetings(started_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &Store{db: db}, nil
}

// Set JSON-encodes value and writes it under key. Writes are last-write-wins
// per key with no transaction spanning keys.
func (s *Store) Set(key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %v", key, err)
	}

	_, err = s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to write %s: %v", key, err)
	}
	return nil
}

// Get reads the JSON value stored under key into out.
func (s *Store) Get(key string, out interface{}) error {
	var encoded string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", key, err)
	}

	if err := json.Unmarshal([]byte(encoded), out); err != nil {
		return fmt.Errorf("failed to decode %s: %v", key, err)
	}
	return nil
}

// OperationMode returns the configured operation mode, or "" when unset.
func (s *Store) OperationMode() string {
	var mode string
	if err := s.Get(KeyOperationMode, &mode); err != nil {
		return ""
	}
	return mode
}

// RecordMeeting appends a meeting to the history table at export time.
func (s *Store) RecordMeeting(sessionID, title, startedAt, endedAt string, transcriptCount, chatCount int, archivePath string) error {
	_, err := s.db.Exec(`
	INSERT INTO meetings (session_id, title, started_at, ended_at, transcript_count, chat_count, archive_path)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, title, startedAt, endedAt, transcriptCount, chatCount, archivePath)
	if err != nil {
		return fmt.Errorf("failed to record meeting: %v", err)
	}
	return nil
}

// ListMeetings returns recent meetings, newest first.
func (s *Store) ListMeetings(limit int) ([]map[string]interface{}, error) {
	rows, err := s.db.Query(`
	SELECT session_id, title, started_at, ended_at, transcript_count, chat_count, archive_path
	FROM meetings ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %v", err)
	}
	defer rows.Close()

	var meetings []map[string]interface{}

	for rows.Next() {
		var (
			sessionID, title, startedAt, endedAt, archivePath string
			transcriptCount, chatCount                        int
		)
		if err := rows.Scan(&sessionID, &title, &startedAt, &endedAt, &transcriptCount, &chatCount, &archivePath); err != nil {
			continue
		}
		meetings = append(meetings, map[string]interface{}{
			"session_id":       sessionID,
			"title":            title,
			"started_at":       startedAt,
			"ended_at":         endedAt,
			"transcript_count": transcriptCount,
			"chat_count":       chatCount,
			"archive_path":     archivePath,
		})
	}

	return meetings, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
