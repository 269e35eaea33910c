// Package notify surfaces capture status to the user as transient in-page
// banners and records the meeting-started signal for the companion process.
package notify

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
	"github.com/codebuildervaibhav/meeting-capture/internal/store"
	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

// bannerCSS matches the host page look for the transient status banner.
const bannerCSS = `background: rgb(255 255 255 / 10%);
	backdrop-filter: blur(16px);
	position: fixed;
	top: 5%;
	left: 0;
	right: 0;
	margin-left: auto;
	margin-right: auto;
	max-width: 780px;
	z-index: 1000;
	padding: 0rem 1rem;
	border-radius: 8px;
	display: flex;
	justify-content: center;
	align-items: center;
	gap: 16px;
	font-size: 1rem;
	line-height: 1.5;
	font-family: 'Google Sans',Roboto,Arial,sans-serif;
	box-shadow: rgba(0, 0, 0, 0.16) 0px 10px 36px 0px, rgba(0, 0, 0, 0.06) 0px 0px 0px 1px;`

// Mirror persists the meeting tab identifier.
type Mirror interface {
	Set(key string, value interface{}) error
}

// Notifier delivers user-visible status and the meeting-started signal.
type Notifier interface {
	// MeetingStarted records which browser target carries the active
	// meeting so the companion process knows where to collect results.
	MeetingStarted(ctx context.Context) error
	// Show renders a transient banner; status 200 gets informational
	// styling, anything else warning styling. Auto-dismisses after 5s.
	Show(ctx context.Context, status types.Status) error
}

// PageNotifier implements Notifier by injecting banners into the page.
type PageNotifier struct {
	page   dom.Page
	mirror Mirror
}

// NewPageNotifier creates a notifier bound to the page and mirror.
func NewPageNotifier(page dom.Page, mirror Mirror) *PageNotifier {
	return &PageNotifier{page: page, mirror: mirror}
}

// MeetingStarted stores the active meeting target id.
func (n *PageNotifier) MeetingStarted(ctx context.Context) error {
	id := n.page.TargetID()
	if err := n.mirror.Set(store.KeyMeetingTab, id); err != nil {
		return fmt.Errorf("failed to record meeting tab: %v", err)
	}
	log.Printf("Meeting started, target %s recorded", id)
	return nil
}

// Show injects a banner that removes itself after 5 seconds.
func (n *PageNotifier) Show(ctx context.Context, status types.Status) error {
	color := "orange"
	if status.Status == 200 {
		color = "#2A9ACA"
	}

	expr := fmt.Sprintf(`(() => {
		const html = document.querySelector("html");
		if (!html) return false;
		const obj = document.createElement("div");
		const text = document.createElement("p");
		obj.style.cssText = "color: " + %s + "; " + %s;
		text.innerHTML = %s;
		obj.prepend(text);
		html.append(obj);
		setTimeout(() => { obj.style.display = "none"; }, 5000);
		return true;
	})()`, strconv.Quote(color), strconv.Quote(bannerCSS), strconv.Quote(status.Message))

	var ok bool
	if err := n.page.Evaluate(ctx, expr, &ok); err != nil {
		return fmt.Errorf("failed to show notification: %v", err)
	}
	if err := n.mirror.Set(store.KeyExtensionStatus, status); err != nil {
		log.Printf("Failed to persist status: %v", err)
	}
	return nil
}

// Alert satisfies the capture pipelines' fire-and-forget alerter.
func (n *PageNotifier) Alert(status types.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.Show(ctx, status); err != nil {
		log.Printf("Failed to show alert: %v", err)
	}
}
