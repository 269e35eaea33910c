package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
	"github.com/codebuildervaibhav/meeting-capture/internal/tasks"
	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

const testSettle = 30 * time.Millisecond

func newTranscriptFixture() (*tasks.Loop, *Session, *fakeCaptions, *fakeAlerter, *TranscriptPipeline) {
	loop := tasks.NewLoop()
	session := NewSession(nil)
	source := &fakeCaptions{}
	alerter := &fakeAlerter{}
	pipe := NewTranscriptPipeline(context.Background(), loop, session, source, alerter, testSettle)
	return loop, session, source, alerter, pipe
}

func TestTranscriptCommitAfterSettle(t *testing.T) {
	loop, session, source, _, pipe := newTranscriptFixture()

	source.set(CaptionItem{Speaker: "Alice", Text: "hello everyone"})
	pipe.Handler()(dom.Batch{})

	time.Sleep(testSettle + 50*time.Millisecond)
	loop.Stop()

	if len(session.Transcript) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(session.Transcript))
	}
	entry := session.Transcript[0]
	if entry.PersonName != "Alice" || entry.PersonTranscript != "hello everyone" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if _, err := types.ParseStamp(entry.TimeStamp); err != nil {
		t.Errorf("entry stamp not parseable: %v", err)
	}
}

func TestTranscriptReadsFinalFormAtSettle(t *testing.T) {
	loop, session, source, _, pipe := newTranscriptFixture()

	// The item keeps growing while the settle delay is pending; the commit
	// must see the state at fire time, not at mutation time.
	source.set(CaptionItem{Speaker: "Alice", Text: "hel"})
	pipe.Handler()(dom.Batch{})
	source.set(CaptionItem{Speaker: "Alice", Text: "hello everyone"})

	time.Sleep(testSettle + 50*time.Millisecond)
	loop.Stop()

	if len(session.Transcript) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(session.Transcript))
	}
	if got := session.Transcript[0].PersonTranscript; got != "hello everyone" {
		t.Errorf("commit should re-read the live item, got %q", got)
	}
}

func TestTranscriptDuplicateBatchesAppendOnce(t *testing.T) {
	loop, session, source, _, pipe := newTranscriptFixture()

	source.set(CaptionItem{Speaker: "Alice", Text: "stable line"})
	handler := pipe.Handler()
	handler(dom.Batch{})
	handler(dom.Batch{})
	handler(dom.Batch{})

	time.Sleep(testSettle + 80*time.Millisecond)
	loop.Stop()

	if len(session.Transcript) != 1 {
		t.Errorf("re-reads of an unchanged item should dedup to 1 entry, got %d", len(session.Transcript))
	}
}

func TestTranscriptEmptyContainerCommitsPending(t *testing.T) {
	loop, session, source, _, pipe := newTranscriptFixture()

	done := make(chan struct{})
	loop.Post(func() {
		session.SetBuffer("Alice", "last words", types.NowStamp())
		close(done)
	})
	<-done

	// Captions toggled off: zero items
	source.set()
	pipe.Handler()(dom.Batch{})

	time.Sleep(50 * time.Millisecond)
	loop.Stop()

	if len(session.Transcript) != 1 {
		t.Fatalf("pending buffer should be committed on empty container, got %d entries", len(session.Transcript))
	}
	if session.BufferPending() {
		t.Error("buffer text should be cleared after the flush")
	}
}

func TestTranscriptIgnoredAfterEnd(t *testing.T) {
	loop, session, source, _, pipe := newTranscriptFixture()

	source.set(CaptionItem{Speaker: "Alice", Text: "too late"})
	loop.Post(session.MarkEnded)
	pipe.Handler()(dom.Batch{})

	time.Sleep(testSettle + 50*time.Millisecond)
	loop.Stop()

	if len(session.Transcript) != 0 {
		t.Errorf("batches after meeting end must be no-ops, got %d entries", len(session.Transcript))
	}
}

func TestTranscriptErrorAlertsOnce(t *testing.T) {
	loop, _, source, alerter, pipe := newTranscriptFixture()

	source.err = errors.New("detached node")
	handler := pipe.Handler()
	handler(dom.Batch{})
	handler(dom.Batch{})

	time.Sleep(50 * time.Millisecond)
	loop.Stop()

	if alerter.count() != 1 {
		t.Errorf("extraction errors should alert exactly once, got %d", alerter.count())
	}
}
