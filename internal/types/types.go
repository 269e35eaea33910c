package types

import (
	"strings"
	"time"
)

// Meeting lifecycle state constants
const (
	StateNotStarted      = "NOT_STARTED"
	StateStarted         = "STARTED"
	StateCapturingActive = "CAPTURING_ACTIVE"
	StateEnded           = "ENDED"
)

// Operation mode constants
const (
	ModeAuto   = "auto"
	ModeManual = "manual"
)

// TranscriptEntry is a single captured caption line.
// JSON keys match the exported transcript format consumed downstream.
type TranscriptEntry struct {
	PersonName       string `json:"personName"`
	TimeStamp        string `json:"timeStamp"`
	PersonTranscript string `json:"personTranscript"`
}

// ChatEntry is a single captured chat message.
type ChatEntry struct {
	PersonName      string `json:"personName"`
	TimeStamp       string `json:"timeStamp"`
	ChatMessageText string `json:"chatMessageText"`
}

// MeetingMetadata holds per-meeting identity captured near meeting start.
type MeetingMetadata struct {
	MeetingTitle          string `json:"meetingTitle"`
	MeetingStartTimeStamp string `json:"meetingStartTimeStamp"`
	UserName              string `json:"userName"`
}

// Status is a user-visible status payload. Status 200 renders as
// informational, anything else as a warning.
type Status struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// StatusRunning is the default healthy status banner.
func StatusRunning() Status {
	return Status{
		Status:  200,
		Message: "<strong>Capture is running</strong> <br /> Do not turn off captions",
	}
}

// StatusBug is shown once per meeting when a capture pipeline hits an
// unexpected DOM shape.
func StatusBug() Status {
	return Status{
		Status:  400,
		Message: "Capture encountered a new error",
	}
}

// StatusManual instructs the user to enable captions themselves.
func StatusManual() Status {
	return Status{
		Status:  400,
		Message: "<strong>Capture is idle</strong> <br /> Turn on captions using the CC icon, if needed",
	}
}

// stampLayout is ISO-8601 with millisecond precision, matching the
// JavaScript Date.toISOString format used by the exported records.
const stampLayout = "2006-01-02T15:04:05.000Z"

// NowStamp returns the current UTC wall-clock time as an ISO-8601 string.
func NowStamp() string {
	return Stamp(time.Now())
}

// Stamp formats t as an uppercase ISO-8601 string in UTC.
func Stamp(t time.Time) string {
	return strings.ToUpper(t.UTC().Format(stampLayout))
}

// ParseStamp parses a stamp produced by Stamp. Plain RFC3339 is accepted
// too so stamps from other sources still compare.
func ParseStamp(s string) (time.Time, error) {
	if t, err := time.Parse(stampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
