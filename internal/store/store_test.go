package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "capture.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSetGetRoundTrip(t *testing.T) {
	st := newTestStore(t)

	entries := []types.TranscriptEntry{
		{PersonName: "Alice", TimeStamp: "2025-01-23T14:30:22.123Z", PersonTranscript: "hello"},
		{PersonName: "Bob", TimeStamp: "2025-01-23T14:30:25.456Z", PersonTranscript: "hi"},
	}
	if err := st.Set(KeyTranscript, entries); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got []types.TranscriptEntry
	if err := st.Get(KeyTranscript, &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 2 || got[0].PersonName != "Alice" || got[1].PersonTranscript != "hi" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	st := newTestStore(t)

	if err := st.Set(KeyUserName, "You"); err != nil {
		t.Fatal(err)
	}
	if err := st.Set(KeyUserName, "Alice"); err != nil {
		t.Fatal(err)
	}

	var name string
	if err := st.Get(KeyUserName, &name); err != nil {
		t.Fatal(err)
	}
	if name != "Alice" {
		t.Errorf("expected last write to win, got %s", name)
	}
}

func TestGetMissingKey(t *testing.T) {
	st := newTestStore(t)

	var out string
	err := st.Get("nope", &out)
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestOperationMode(t *testing.T) {
	st := newTestStore(t)

	if mode := st.OperationMode(); mode != "" {
		t.Errorf("unset mode should read as empty, got %q", mode)
	}

	if err := st.Set(KeyOperationMode, "manual"); err != nil {
		t.Fatal(err)
	}
	if mode := st.OperationMode(); mode != "manual" {
		t.Errorf("expected manual, got %q", mode)
	}
}

func TestRecordAndListMeetings(t *testing.T) {
	st := newTestStore(t)

	err := st.RecordMeeting("sess-1", "Weekly Sync",
		"2025-01-23T14:00:00.000Z", "2025-01-23T15:00:00.000Z", 42, 7, "/out/a.tar")
	if err != nil {
		t.Fatalf("RecordMeeting failed: %v", err)
	}
	err = st.RecordMeeting("sess-2", "Standup",
		"2025-01-24T09:00:00.000Z", "2025-01-24T09:15:00.000Z", 10, 0, "/out/b.tar")
	if err != nil {
		t.Fatalf("RecordMeeting failed: %v", err)
	}

	meetings, err := st.ListMeetings(10)
	if err != nil {
		t.Fatalf("ListMeetings failed: %v", err)
	}
	if len(meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(meetings))
	}
	if meetings[0]["session_id"] != "sess-2" {
		t.Errorf("meetings should list newest first, got %v", meetings[0]["session_id"])
	}
	if meetings[1]["transcript_count"] != 42 {
		t.Errorf("unexpected transcript count: %v", meetings[1]["transcript_count"])
	}
}

func TestRecordMeetingDuplicateSessionFails(t *testing.T) {
	st := newTestStore(t)

	if err := st.RecordMeeting("sess-1", "A", "", "", 0, 0, ""); err != nil {
		t.Fatal(err)
	}
	if err := st.RecordMeeting("sess-1", "B", "", "", 0, 0, ""); err == nil {
		t.Error("duplicate session id should be rejected")
	}
}
