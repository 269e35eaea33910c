// Package meeting implements the lifecycle controller: it detects meeting
// start, drives caption/chat enablement, attaches the capture pipelines to
// their containers and tears everything down on meeting end.
package meeting

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/codebuildervaibhav/meeting-capture/internal/capture"
	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
	"github.com/codebuildervaibhav/meeting-capture/internal/notify"
	"github.com/codebuildervaibhav/meeting-capture/internal/selectors"
	"github.com/codebuildervaibhav/meeting-capture/internal/tasks"
	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

// Automation is the slice of UI automation the controller drives.
type Automation interface {
	EnableCaptions(ctx context.Context) error
	OpenChat(ctx context.Context, retry time.Duration) error
	ResolveTitle(ctx context.Context) (string, error)
	CaptureUserName(ctx context.Context, poll time.Duration) (string, error)
}

// Config holds the controller's timing and mode knobs.
type Config struct {
	OperationMode     string
	SettleDelay       time.Duration
	ChatDebounce      time.Duration
	RetryInterval     time.Duration
	UserNamePoll      time.Duration
	CaptionSetupDelay time.Duration
}

// Controller walks the meeting through
// NotStarted -> Started -> CapturingActive -> Ended.
type Controller struct {
	cfg      Config
	sel      selectors.Table
	page     dom.Page
	observer dom.Observer
	clicks   dom.ClickWatcher
	ui       Automation
	notifier notify.Notifier
	loop     *tasks.Loop
	session  *capture.Session

	transcript *capture.TranscriptPipeline
	chat       *capture.ChatPipeline

	mu    sync.Mutex
	state string
	subs  []dom.Subscription

	done     chan struct{}
	doneOnce sync.Once
}

// NewController wires a controller over an existing session and pipelines.
func NewController(cfg Config, sel selectors.Table, page dom.Page, observer dom.Observer, clicks dom.ClickWatcher, ui Automation, notifier notify.Notifier, loop *tasks.Loop, session *capture.Session, transcript *capture.TranscriptPipeline, chat *capture.ChatPipeline) *Controller {
	return &Controller{
		cfg:        cfg,
		sel:        sel,
		page:       page,
		observer:   observer,
		clicks:     clicks,
		ui:         ui,
		notifier:   notifier,
		loop:       loop,
		session:    session,
		transcript: transcript,
		chat:       chat,
		state:      types.StateNotStarted,
		done:       make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the meeting has ended and the final flush completed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run blocks until the meeting starts, then performs setup and returns.
// Capture continues in the background until the end control is clicked or
// EndMeeting is called.
func (c *Controller) Run(ctx context.Context) error {
	// Meeting start is signalled by the end control appearing
	if err := dom.WaitFrame(ctx, c.page, c.sel.EndMeetingButton, ""); err != nil {
		return err
	}
	log.Println("Meeting started")

	c.setState(types.StateStarted)
	c.loop.Post(func() { c.session.MarkStarted() })

	if err := c.notifier.MeetingStarted(ctx); err != nil {
		log.Printf("Failed to signal meeting start: %v", err)
	}

	go c.captureUserName(ctx)
	go c.resolveTitle(ctx)

	if c.cfg.OperationMode == types.ModeManual {
		log.Println("Manual mode selected, leaving transcript off")
		if err := c.notifier.Show(ctx, types.StatusManual()); err != nil {
			log.Printf("Failed to show manual mode notice: %v", err)
		}
	} else {
		// Let the host UI stabilize before driving its menus
		go func() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.CaptionSetupDelay):
			}
			if err := c.ui.EnableCaptions(ctx); err != nil {
				log.Printf("Error enabling captions: %v", err)
				c.notifyErr(ctx)
			}
		}()
	}

	// Chat and transcript containers are resolved independently; failure
	// of one does not halt the other.
	go c.attachChat(ctx)
	go c.attachTranscript(ctx)

	return nil
}

// EndMeeting performs the meeting-end teardown: observers disconnected,
// pending buffer committed, logs flushed. Idempotent.
func (c *Controller) EndMeeting() {
	c.doneOnce.Do(func() {
		c.setState(types.StateEnded)

		c.mu.Lock()
		subs := c.subs
		c.subs = nil
		c.mu.Unlock()
		for _, sub := range subs {
			sub.Disconnect()
		}
		c.chat.Stop()

		flushed := make(chan struct{})
		c.loop.Post(func() {
			defer close(flushed)
			c.session.MarkEnded()
			if c.session.BufferPending() {
				c.session.CommitBuffer()
			}
			c.session.Flush()
		})
		<-flushed

		log.Println("Meeting ended, capture stopped")
		close(c.done)
	})
}

// captureUserName resolves the attending user's display name with a
// bounded retry loop and records it on the session.
func (c *Controller) captureUserName(ctx context.Context) {
	name, err := c.ui.CaptureUserName(ctx, c.cfg.UserNamePoll)
	if err != nil {
		log.Printf("Failed to capture user name: %v", err)
		return
	}
	c.loop.Post(func() { c.session.SetUserName(name) })
}

// resolveTitle retries title resolution every retry interval until it
// succeeds; bounded only by the page lifetime.
func (c *Controller) resolveTitle(ctx context.Context) {
	for {
		title, err := c.ui.ResolveTitle(ctx)
		if err == nil {
			c.loop.Post(func() { c.session.SetMeetingTitle(title) })
			return
		}
		log.Printf("Error updating meeting title: %v", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.RetryInterval):
		}
	}
}

// attachChat opens the chat panel and observes its container.
func (c *Controller) attachChat(ctx context.Context) {
	if err := c.ui.OpenChat(ctx, c.cfg.RetryInterval); err != nil {
		log.Printf("Failed to open chat panel: %v", err)
		return
	}
	if err := dom.WaitFrame(ctx, c.page, c.sel.ChatContainer, ""); err != nil {
		log.Printf("Chat container not found: %v", err)
		return
	}

	sub, err := c.observer.Observe(ctx, c.sel.ChatContainer, c.chat.Handler())
	if err != nil {
		log.Printf("Chat container not found: %v", err)
		return
	}
	c.addSub(sub)
	log.Println("Chat monitoring initialized")
}

// attachTranscript observes the captions container, shows the status
// banner and arms the meeting-end click watcher.
func (c *Controller) attachTranscript(ctx context.Context) {
	if err := dom.WaitFrame(ctx, c.page, c.sel.TranscriptContainer, ""); err != nil {
		log.Printf("Transcript container not found: %v", err)
		c.notifyErr(ctx)
		return
	}

	sub, err := c.observer.Observe(ctx, c.sel.TranscriptContainer, c.transcript.Handler())
	if err != nil {
		log.Printf("Transcript container not found: %v", err)
		c.notifyErr(ctx)
		return
	}
	c.addSub(sub)
	c.setState(types.StateCapturingActive)

	if c.cfg.OperationMode != types.ModeManual {
		if err := c.notifier.Show(ctx, types.StatusRunning()); err != nil {
			log.Printf("Failed to show status: %v", err)
		}
	}

	clickSub, err := c.clicks.WatchClick(ctx, c.sel.EndMeetingButton, c.EndMeeting)
	if err != nil {
		log.Printf("Failed to watch end control: %v", err)
		return
	}
	c.addSub(clickSub)
}

// addSub tracks a subscription for teardown, disconnecting immediately if
// the meeting already ended.
func (c *Controller) addSub(sub dom.Subscription) {
	c.mu.Lock()
	ended := c.state == types.StateEnded
	if !ended {
		c.subs = append(c.subs, sub)
	}
	c.mu.Unlock()
	if ended {
		sub.Disconnect()
	}
}

// setState transitions the lifecycle state.
func (c *Controller) setState(state string) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// notifyErr surfaces a setup failure to the user.
func (c *Controller) notifyErr(ctx context.Context) {
	if err := c.notifier.Show(ctx, types.StatusBug()); err != nil {
		log.Printf("Failed to show error notification: %v", err)
	}
}
