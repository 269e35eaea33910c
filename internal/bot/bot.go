// Package bot joins the Zoom web client as an unattended participant and
// monitors the meeting until it ends or its time limits run out.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
)

// Navigator is the page surface the bot drives; dom.Page implementations
// satisfy it along with navigation.
type Navigator interface {
	dom.Page
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
}

// Config holds the bot's identity and time limits.
type Config struct {
	Name               string
	MaxWaitingTime     time.Duration
	MinRecordTime      time.Duration
	LowAttendanceGrace time.Duration
}

// Monitor poll cadence, matching the original bot's 2s loop.
const monitorInterval = 2 * time.Second

// End reasons returned by Monitor.
const (
	ReasonMeetingEnded   = "meeting ended by host"
	ReasonRemoved        = "removed from meeting"
	ReasonMaxWaiting     = "maximum waiting time exceeded"
	ReasonMinRecordTime  = "minimum record time reached"
	ReasonLowAttendance  = "attendance stayed low"
	ReasonContextDone    = "context cancelled"
	ReasonRetryRequested = "join retry requested"
)

// Bot drives the join flow and the meeting monitor loop.
type Bot struct {
	page Navigator
	cfg  Config

	admitted  bool
	admitTime time.Time
	needRetry bool
}

// New creates a bot for the page.
func New(page Navigator, cfg Config) *Bot {
	return &Bot{page: page, cfg: cfg}
}

// Join navigates to the meeting and walks the pre-join form: connect
// audio, mute, stop video, passcode and display name, Join. Individual
// steps tolerate absence since the web client skips some of them.
func (b *Bot) Join(ctx context.Context, link MeetingLink) error {
	log.Printf("Navigating to Zoom meeting id: %s", link.MeetingID)
	if err := b.page.Navigate(ctx, link.JoinURL()); err != nil {
		return fmt.Errorf("failed to navigate to meeting: %v", err)
	}

	if invalid, _ := b.hasText(ctx, "This meeting link is invalid"); invalid {
		return fmt.Errorf("meeting link is invalid")
	}

	if err := b.clickByLabel(ctx, "Join Audio", 10*time.Second); err != nil {
		log.Printf("Failed to connect to audio: %v", err)
	} else {
		log.Println("Audio connected.")
	}

	b.ensureMuted(ctx)
	b.ensureVideoStopped(ctx)

	if link.Passcode != "" {
		if err := b.fill(ctx, "#input-for-pwd", link.Passcode); err != nil {
			log.Printf("Failed to enter the meeting password: %v", err)
		}
	}
	if err := b.fill(ctx, "#input-for-name", b.cfg.Name); err != nil {
		log.Printf("Failed to enter the bot's name: %v", err)
	}

	if err := b.clickButtonWithText(ctx, "Join"); err != nil {
		return fmt.Errorf("failed to click Join: %v", err)
	}
	log.Println("Clicked the 'Join' button successfully.")
	return nil
}

// RetryJoin refreshes the page and repeats the join flow.
func (b *Bot) RetryJoin(ctx context.Context, link MeetingLink) error {
	log.Println("Retrying to join the meeting...")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(12 * time.Second):
	}
	if err := b.page.Reload(ctx); err != nil {
		return fmt.Errorf("failed to refresh page: %v", err)
	}
	b.needRetry = false
	return b.Join(ctx, link)
}

// NeedRetry reports whether the last monitor pass requested a rejoin.
func (b *Bot) NeedRetry() bool { return b.needRetry }

// Monitor polls the meeting every 2 seconds and returns the reason the
// session should end. onAdmitted fires exactly once when the bot enters
// the meeting proper.
func (b *Bot) Monitor(ctx context.Context, onAdmitted func()) string {
	log.Println("Started monitoring the meeting.")
	start := time.Now()
	var lowAttendanceDeadline time.Time

	for {
		select {
		case <-ctx.Done():
			return ReasonContextDone
		case <-time.After(monitorInterval):
		}

		if ended, _ := b.meetingEnded(ctx); ended {
			return ReasonMeetingEnded
		}
		if removed, _ := b.hasText(ctx, "You have been removed"); removed {
			return ReasonRemoved
		}
		if denied, _ := b.hasText(ctx, "You can't join this call"); denied {
			log.Println("Join request was denied. Will retry.")
			b.needRetry = true
			return ReasonRetryRequested
		}

		if !b.admitted {
			if time.Since(start) > b.cfg.MaxWaitingTime {
				return ReasonMaxWaiting
			}
			if b.inWaitingRoom(ctx) {
				log.Println("Waiting to be admitted to the meeting.")
				continue
			}
			if inMeeting, _ := b.hasText(ctx, "Participants"); inMeeting {
				log.Println("Admitted to the meeting.")
				b.admitted = true
				b.admitTime = time.Now()
				if onAdmitted != nil {
					onAdmitted()
				}
			}
			continue
		}

		if time.Since(b.admitTime) > b.cfg.MinRecordTime {
			return ReasonMinRecordTime
		}

		b.declineUnmuteRequest(ctx)

		// End early when the bot has been alone for the grace period
		count := b.attendeeCount(ctx)
		if count > 1 || count < 0 {
			if !lowAttendanceDeadline.IsZero() {
				log.Println("Attendee count recovered. Cancelling low-attendance timer.")
				lowAttendanceDeadline = time.Time{}
			}
			continue
		}
		if lowAttendanceDeadline.IsZero() {
			lowAttendanceDeadline = time.Now().Add(b.cfg.LowAttendanceGrace)
			log.Println("Attendee count is 1 or less. Starting low-attendance timer.")
		} else if time.Now().After(lowAttendanceDeadline) {
			return ReasonLowAttendance
		}
	}
}

// ensureMuted mutes the bot's microphone if it is live.
func (b *Bot) ensureMuted(ctx context.Context) {
	label, err := b.buttonLabel(ctx, `button[aria-label="Mute"], button[aria-label="Unmute"]`)
	if err != nil || label == "" {
		log.Println("Audio control not found.")
		return
	}
	if label == "Unmute" {
		log.Println("Audio is already muted.")
		return
	}
	if err := b.page.Click(ctx, `button[aria-label="Mute"]`); err != nil {
		log.Printf("Failed to mute audio: %v", err)
		return
	}
	log.Println("Audio muted successfully.")
}

// ensureVideoStopped stops the bot's camera if it is live.
func (b *Bot) ensureVideoStopped(ctx context.Context) {
	label, err := b.buttonLabel(ctx, `button[aria-label="Stop Video"], button[aria-label="Start Video"]`)
	if err != nil || label == "" {
		log.Println("Video control not found.")
		return
	}
	if label == "Start Video" {
		log.Println("Video is already stopped.")
		return
	}
	if err := b.page.Click(ctx, `button[aria-label="Stop Video"]`); err != nil {
		log.Printf("Failed to stop video: %v", err)
		return
	}
	log.Println("Video stopped successfully.")
}

// declineUnmuteRequest re-mutes when the host asks the bot to unmute.
func (b *Bot) declineUnmuteRequest(ctx context.Context) {
	asked, _ := b.hasText(ctx, "The host would like you to unmute")
	if !asked {
		return
	}
	log.Println("Detected unmute request. Staying muted.")
	if err := b.clickButtonWithText(ctx, "Mute"); err != nil {
		log.Printf("Failed to decline unmute request: %v", err)
	}
}

// inWaitingRoom detects the waiting-room holding screens.
func (b *Bot) inWaitingRoom(ctx context.Context) bool {
	for _, phrase := range []string{
		"The host will admit you when they're ready",
		"Waiting for the host to start the meeting.",
		"Host has joined. We've let them know you're here.",
	} {
		if found, _ := b.hasText(ctx, phrase); found {
			return true
		}
	}
	return false
}

// meetingEnded detects the host-side end screens.
func (b *Bot) meetingEnded(ctx context.Context) (bool, error) {
	for _, phrase := range []string{
		"This meeting has been ended by host",
		"The call ended because everyone left",
	} {
		if found, err := b.hasText(ctx, phrase); err != nil {
			return false, err
		} else if found {
			return true, nil
		}
	}
	return false, nil
}

// attendeeCount reads the participants counter, -1 when unavailable.
func (b *Bot) attendeeCount(ctx context.Context) int {
	text, err := b.page.Text(ctx, `span.footer-button__number-counter`)
	if err != nil || text == "" {
		return -1
	}
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return -1
	}
	return count
}

// fill waits for an input field and types value into it.
func (b *Bot) fill(ctx context.Context, selector, value string) error {
	if err := dom.WaitTimeout(ctx, b.page, selector, 10*time.Second); err != nil {
		return err
	}
	return b.page.SendKeys(ctx, selector, value)
}

// hasText reports whether the visible page text contains substr.
func (b *Bot) hasText(ctx context.Context, substr string) (bool, error) {
	expr := fmt.Sprintf(
		`document.body ? document.body.innerText.includes(%s) : false`,
		strconv.Quote(substr))
	var found bool
	if err := b.page.Evaluate(ctx, expr, &found); err != nil {
		return false, err
	}
	return found, nil
}

// clickByLabel waits for a button with the aria-label and clicks it.
func (b *Bot) clickByLabel(ctx context.Context, label string, timeout time.Duration) error {
	selector := fmt.Sprintf(`button[aria-label=%q]`, label)
	if err := dom.WaitTimeout(ctx, b.page, selector, timeout); err != nil {
		return err
	}
	return b.page.Click(ctx, selector)
}

// clickButtonWithText clicks the first button whose text contains text.
func (b *Bot) clickButtonWithText(ctx context.Context, text string) error {
	expr := fmt.Sprintf(`(() => {
		const btn = Array.from(document.querySelectorAll("button"))
			.find(el => el.textContent.includes(%s));
		if (!btn) return false;
		btn.click();
		return true;
	})()`, strconv.Quote(text))
	var clicked bool
	if err := b.page.Evaluate(ctx, expr, &clicked); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("button %q not found", text)
	}
	return nil
}

// buttonLabel returns the aria-label of the first match of selector.
func (b *Bot) buttonLabel(ctx context.Context, selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		return el ? (el.getAttribute("aria-label") || "") : "";
	})()`, strconv.Quote(selector))
	var label string
	if err := b.page.Evaluate(ctx, expr, &label); err != nil {
		return "", err
	}
	return label, nil
}
