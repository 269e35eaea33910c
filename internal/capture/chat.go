package capture

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
	"github.com/codebuildervaibhav/meeting-capture/internal/tasks"
	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

// chatRecentWindow bounds each extraction pass to the newest items. A
// burst larger than this inside one debounce cycle loses the overflow;
// accepted limitation carried over from the original capture behavior.
const chatRecentWindow = 5

// ChatPipeline turns chat-container mutation batches into deduplicated
// chat entries. Bursts are coalesced by a shared debounce timer.
type ChatPipeline struct {
	ctx       context.Context
	session   *Session
	source    ChatSource
	alerter   Alerter
	debouncer *tasks.Debouncer
}

// NewChatPipeline wires a chat pipeline to the session.
func NewChatPipeline(ctx context.Context, loop *tasks.Loop, session *Session, source ChatSource, alerter Alerter, debounce time.Duration) *ChatPipeline {
	p := &ChatPipeline{
		ctx:     ctx,
		session: session,
		source:  source,
		alerter: alerter,
	}
	p.debouncer = tasks.NewDebouncer(loop, debounce, p.process)
	return p
}

// Handler returns the mutation handler to register with the observer.
// Every batch resets the shared debounce timer.
func (p *ChatPipeline) Handler() func(dom.Batch) {
	return func(dom.Batch) { p.debouncer.Trigger() }
}

// Stop discards any pending debounced pass.
func (p *ChatPipeline) Stop() {
	p.debouncer.Cancel()
}

// process runs on the task loop once the debounce timer fires.
func (p *ChatPipeline) process() {
	if p.session.Ended() {
		return
	}

	items, err := p.source.Recent(p.ctx, chatRecentWindow)
	if err != nil {
		p.fail(err)
		return
	}

	for _, item := range items {
		if item.Sender == "" || item.Text == "" {
			continue
		}

		stamp := item.TimeStamp
		if stamp == "" {
			stamp = types.NowStamp()
		}

		id := messageIdentity(item)
		if p.session.IsProcessed(id) {
			continue
		}

		entry := types.ChatEntry{
			PersonName:      item.Sender,
			TimeStamp:       stamp,
			ChatMessageText: item.Text,
		}
		if p.session.AppendChat(entry) {
			log.Printf("New chat message from %s", entry.PersonName)
			p.session.MarkProcessed(id)
		}
	}
}

// messageIdentity derives the identity string used to recognize a chat
// node as already processed: text box id, else item id, else a random
// fallback so the node is still remembered for this pass.
func messageIdentity(item ChatItem) string {
	if item.TextBoxID != "" {
		return item.TextBoxID
	}
	if item.ItemID != "" {
		return item.ItemID
	}
	return uuid.New().String()
}

// fail logs an extraction error and surfaces it to the user once per
// meeting.
func (p *ChatPipeline) fail(err error) {
	log.Printf("Chat capture error: %v", err)
	if !p.session.chatErrorSeen() && !p.session.Ended() {
		p.alerter.Alert(types.StatusBug())
	}
}
