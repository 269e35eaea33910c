package zoom

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
	"github.com/codebuildervaibhav/meeting-capture/internal/selectors"
	"github.com/codebuildervaibhav/meeting-capture/internal/store"
)

// stepTimeout bounds each required step of a scripted click sequence.
const stepTimeout = 10 * time.Second

// optionalStepTimeout bounds steps whose absence is tolerated.
const optionalStepTimeout = 2 * time.Second

// UIAutomation drives the host client's menus: caption enablement, chat
// panel, meeting title. It owns the selector strings so the capture core
// never sees them.
type UIAutomation struct {
	page dom.Page
	sel  selectors.Table
}

// NewUIAutomation creates an automation helper for the page.
func NewUIAutomation(page dom.Page, sel selectors.Table) *UIAutomation {
	return &UIAutomation{page: page, sel: sel}
}

// EnableCaptions walks the fixed menu sequence that turns on live captions
// and opens the full-transcript view. The save confirmation is optional in
// some client builds and its absence is tolerated; every other step is
// required and fails the flow.
func (u *UIAutomation) EnableCaptions(ctx context.Context) error {
	steps := []string{
		u.sel.MoreButton,
		u.sel.CaptionsLink,
		u.sel.ShowCaptionsOption,
	}
	for _, sel := range steps {
		if err := u.waitAndClick(ctx, sel, stepTimeout); err != nil {
			return err
		}
	}

	if err := u.waitAndClick(ctx, u.sel.EnableCaptionOption, optionalStepTimeout); err != nil {
		log.Println("Save button not found, proceeding without clicking it.")
	}

	// Reopen the menu to reach the full-transcript view
	reopen := []string{
		u.sel.MoreButton,
		u.sel.CaptionsLink,
		u.sel.ViewFullTranscriptOption,
	}
	for _, sel := range reopen {
		if err := u.waitAndClick(ctx, sel, stepTimeout); err != nil {
			return err
		}
	}

	log.Println("Captions and transcript enabled successfully.")
	return nil
}

// OpenChat clicks the chat panel button, retrying at the given interval
// while the control is momentarily missing. It returns only on success or
// context cancellation.
func (u *UIAutomation) OpenChat(ctx context.Context, retry time.Duration) error {
	for {
		found, err := u.page.Exists(ctx, u.sel.ChatButton)
		if err != nil {
			return err
		}
		if found {
			if err := u.page.Click(ctx, u.sel.ChatButton); err != nil {
				return fmt.Errorf("failed to click chat button: %v", err)
			}
			log.Println("Chat button clicked successfully")
			return nil
		}

		log.Println("Chat button not found. Retrying...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}

// ResolveTitle opens the meeting info panel, reads the topic text,
// sanitizes it for filesystem use and closes the panel again.
func (u *UIAutomation) ResolveTitle(ctx context.Context) (string, error) {
	if err := u.waitAndClick(ctx, u.sel.MeetingTitleButton, stepTimeout); err != nil {
		return "", err
	}

	if err := dom.WaitTimeout(ctx, u.page, u.sel.MeetingTitleElement, stepTimeout); err != nil {
		return "", err
	}
	raw, err := u.page.Text(ctx, u.sel.MeetingTitleElement)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", errors.New("meeting title element is empty")
	}

	// Close the info panel
	if err := u.page.Click(ctx, u.sel.MeetingTitleButton); err != nil {
		log.Printf("Failed to close meeting info panel: %v", err)
	}

	return store.SanitizeFilename(raw), nil
}

// CaptureUserName polls the participants region at the given cadence until
// it yields non-empty text.
func (u *UIAutomation) CaptureUserName(ctx context.Context, poll time.Duration) (string, error) {
	if err := dom.WaitFrame(ctx, u.page, u.sel.UserNameElement, ""); err != nil {
		return "", err
	}

	for {
		name, err := u.page.Text(ctx, u.sel.UserNameElement)
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(poll):
		}
	}
}

// waitAndClick waits for a selector within timeout, then clicks it.
func (u *UIAutomation) waitAndClick(ctx context.Context, selector string, timeout time.Duration) error {
	if err := dom.WaitTimeout(ctx, u.page, selector, timeout); err != nil {
		return err
	}
	if err := u.page.Click(ctx, selector); err != nil {
		return fmt.Errorf("failed to click %s: %v", selector, err)
	}
	return nil
}
