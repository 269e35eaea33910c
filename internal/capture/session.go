// Package capture holds the session state and the caption/chat capture
// pipelines. All methods on Session must run on the task loop; the loop is
// the single writer for every field.
package capture

import (
	"log"
	"time"

	"github.com/codebuildervaibhav/meeting-capture/internal/store"
	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

// Dedup windows: observations of the same speaker and text closer together
// than these are suppressed as re-reads of the same utterance/message.
const (
	transcriptDedupWindow = 10 * time.Second
	chatDedupWindow       = 5 * time.Second
)

// processedIDCap bounds the chat identity memory, oldest evicted first.
const processedIDCap = 100

// Mirror persists named session fields to local storage.
type Mirror interface {
	Set(key string, value interface{}) error
}

// Alerter shows a user-visible status banner, fire-and-forget.
type Alerter interface {
	Alert(status types.Status)
}

// Session is the capture state for one meeting. It replaces the scattered
// module-level globals of earlier revisions with a single struct owned by
// the lifecycle controller and shared with both pipelines.
type Session struct {
	UserName     string
	Metadata     types.MeetingMetadata
	Transcript   []types.TranscriptEntry
	ChatMessages []types.ChatEntry

	// Most recent not-yet-committed caption observation
	personNameBuffer     string
	transcriptTextBuffer string
	timeStampBuffer      string

	processedMessageIDs []string

	transcriptErrCaptured bool
	chatErrCaptured       bool
	started               bool
	ended                 bool

	mirror Mirror
}

// NewSession creates the session and seeds the mirror the way script
// injection did: user name default, empty logs, meeting start stamp.
func NewSession(mirror Mirror) *Session {
	s := &Session{
		UserName: "You",
		mirror:   mirror,
	}
	s.Metadata.MeetingStartTimeStamp = types.NowStamp()
	s.persist(store.KeyUserName, s.UserName)
	s.persist(store.KeyChatMessages, s.chatLog())
	s.persist(store.KeyMeetingStartTimeStamp, s.Metadata.MeetingStartTimeStamp)
	return s
}

// SetUserName records the attending user's display name.
func (s *Session) SetUserName(name string) {
	if name == "" {
		return
	}
	s.UserName = name
	s.Metadata.UserName = name
	s.persist(store.KeyUserName, name)
}

// SetMeetingTitle records the sanitized meeting title.
func (s *Session) SetMeetingTitle(title string) {
	s.Metadata.MeetingTitle = title
	s.persist(store.KeyMeetingTitle, title)
}

// MarkStarted flags that the meeting controls have appeared.
func (s *Session) MarkStarted() { s.started = true }

// Started reports whether the meeting has started.
func (s *Session) Started() bool { return s.started }

// MarkEnded flags the end of the meeting; late timers become no-ops.
func (s *Session) MarkEnded() { s.ended = true }

// Ended reports whether the meeting has ended.
func (s *Session) Ended() bool { return s.ended }

// SetBuffer overwrites the caption capture buffer. An empty speaker keeps
// the previously buffered name (the UI omits the name on continuation
// rows).
func (s *Session) SetBuffer(speaker, text, stamp string) {
	if speaker != "" {
		s.personNameBuffer = speaker
	}
	s.transcriptTextBuffer = text
	s.timeStampBuffer = stamp
}

// BufferPending reports whether the buffer holds a committable observation.
func (s *Session) BufferPending() bool {
	return s.personNameBuffer != "" && s.transcriptTextBuffer != ""
}

// ClearBufferText resets the transient text; the speaker name survives so
// a follow-up row without a name still attributes correctly.
func (s *Session) ClearBufferText() {
	s.transcriptTextBuffer = ""
}

// CommitBuffer appends the buffered observation to the transcript unless
// an entry with the same speaker and text exists within the dedup window.
// Returns true when an entry was appended.
func (s *Session) CommitBuffer() bool {
	entry := types.TranscriptEntry{
		PersonName:       s.personNameBuffer,
		TimeStamp:        s.timeStampBuffer,
		PersonTranscript: s.transcriptTextBuffer,
	}

	for _, existing := range s.Transcript {
		if existing.PersonName == entry.PersonName &&
			existing.PersonTranscript == entry.PersonTranscript &&
			withinWindow(existing.TimeStamp, entry.TimeStamp, transcriptDedupWindow) {
			return false
		}
	}

	s.Transcript = append(s.Transcript, entry)
	s.persist(store.KeyTranscript, s.Transcript)
	return true
}

// AppendChat appends a chat entry unless a near-duplicate (same sender and
// text within the chat dedup window) already exists anywhere in the log.
func (s *Session) AppendChat(entry types.ChatEntry) bool {
	for _, existing := range s.ChatMessages {
		if existing.PersonName == entry.PersonName &&
			existing.ChatMessageText == entry.ChatMessageText &&
			withinWindow(existing.TimeStamp, entry.TimeStamp, chatDedupWindow) {
			return false
		}
	}

	s.ChatMessages = append(s.ChatMessages, entry)
	s.persist(store.KeyChatMessages, s.ChatMessages)
	return true
}

// IsProcessed reports whether a chat identity was already converted to an
// entry.
func (s *Session) IsProcessed(id string) bool {
	for _, existing := range s.processedMessageIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// MarkProcessed records a chat identity, evicting the oldest past the cap.
func (s *Session) MarkProcessed(id string) {
	s.processedMessageIDs = append(s.processedMessageIDs, id)
	if len(s.processedMessageIDs) > processedIDCap {
		s.processedMessageIDs = s.processedMessageIDs[1:]
	}
}

// ProcessedCount returns the current identity memory size.
func (s *Session) ProcessedCount() int { return len(s.processedMessageIDs) }

// Flush persists both logs, used as the final write at meeting end.
func (s *Session) Flush() {
	s.persist(store.KeyTranscript, s.transcriptLog())
	s.persist(store.KeyChatMessages, s.chatLog())
}

// transcriptErrorSeen latches the transcript pipeline error notification.
func (s *Session) transcriptErrorSeen() bool {
	seen := s.transcriptErrCaptured
	s.transcriptErrCaptured = true
	return seen
}

// chatErrorSeen latches the chat pipeline error notification.
func (s *Session) chatErrorSeen() bool {
	seen := s.chatErrCaptured
	s.chatErrCaptured = true
	return seen
}

// transcriptLog never returns nil so the mirror stores [] rather than null.
func (s *Session) transcriptLog() []types.TranscriptEntry {
	if s.Transcript == nil {
		return []types.TranscriptEntry{}
	}
	return s.Transcript
}

func (s *Session) chatLog() []types.ChatEntry {
	if s.ChatMessages == nil {
		return []types.ChatEntry{}
	}
	return s.ChatMessages
}

// persist mirrors one field, fire-and-forget.
func (s *Session) persist(key string, value interface{}) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Set(key, value); err != nil {
		log.Printf("Failed to persist %s: %v", key, err)
	}
}

// withinWindow reports whether two stamps are closer than window. Stamps
// that do not parse compare as infinitely distant, so content matches with
// unreadable times are appended rather than suppressed.
func withinWindow(a, b string, window time.Duration) bool {
	ta, errA := types.ParseStamp(a)
	tb, errB := types.ParseStamp(b)
	if errA != nil || errB != nil {
		return false
	}
	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff < window
}
