package capture

import (
	"context"
	"log"
	"time"

	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
	"github.com/codebuildervaibhav/meeting-capture/internal/tasks"
	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

// TranscriptPipeline turns caption-container mutation batches into
// deduplicated transcript entries.
//
// The captions UI grows the newest item's text incrementally while a
// speaker keeps talking, so each batch only notes the newest index and
// defers extraction behind a settle delay; by the time the delay fires the
// item is close to its final form and is re-read from the live DOM.
type TranscriptPipeline struct {
	ctx     context.Context
	loop    *tasks.Loop
	session *Session
	source  CaptionSource
	alerter Alerter
	settle  time.Duration
}

// NewTranscriptPipeline wires a transcript pipeline to the session.
func NewTranscriptPipeline(ctx context.Context, loop *tasks.Loop, session *Session, source CaptionSource, alerter Alerter, settle time.Duration) *TranscriptPipeline {
	return &TranscriptPipeline{
		ctx:     ctx,
		loop:    loop,
		session: session,
		source:  source,
		alerter: alerter,
		settle:  settle,
	}
}

// Handler returns the mutation handler to register with the observer. It
// hops onto the task loop before touching session state.
func (p *TranscriptPipeline) Handler() func(dom.Batch) {
	return func(b dom.Batch) {
		p.loop.Post(func() { p.handleBatch() })
	}
}

// handleBatch runs on the task loop for each mutation batch.
func (p *TranscriptPipeline) handleBatch() {
	if p.session.Ended() {
		return
	}

	count, err := p.source.Count(p.ctx)
	if err != nil {
		p.fail(err)
		return
	}

	if count > 0 {
		index := count - 1
		p.loop.Schedule(p.settle, func() { p.commitAt(index) })
		return
	}

	// Captions were toggled off or cleared; commit whatever is pending
	// before dropping transient state.
	log.Println("No active transcript")
	if p.session.BufferPending() {
		p.session.CommitBuffer()
	}
	p.session.ClearBufferText()
}

// commitAt re-reads the item noted index after the settle delay and
// commits it.
func (p *TranscriptPipeline) commitAt(index int) {
	if p.session.Ended() {
		return
	}

	item, ok, err := p.source.Item(p.ctx, index)
	if err != nil {
		p.fail(err)
		return
	}
	if !ok {
		log.Println("Transcript item not found after settle delay")
		return
	}

	p.session.SetBuffer(item.Speaker, item.Text, types.NowStamp())
	p.session.CommitBuffer()
}

// fail logs an extraction error and surfaces it to the user once per
// meeting.
func (p *TranscriptPipeline) fail(err error) {
	log.Printf("Transcript capture error: %v", err)
	if !p.session.transcriptErrorSeen() && !p.session.Ended() {
		p.alerter.Alert(types.StatusBug())
	}
}
