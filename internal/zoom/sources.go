// Package zoom binds the capture pipelines and lifecycle automation to the
// Zoom web client markup through the selector table. Everything here is
// selector wiring; the capture logic lives in internal/capture.
package zoom

import (
	"context"
	"fmt"
	"strconv"

	"github.com/codebuildervaibhav/meeting-capture/internal/capture"
	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
	"github.com/codebuildervaibhav/meeting-capture/internal/selectors"
)

// Captions implements capture.CaptionSource against the live page.
type Captions struct {
	page dom.Page
	sel  selectors.Table
}

// NewCaptions creates a caption source for the page.
func NewCaptions(page dom.Page, sel selectors.Table) *Captions {
	return &Captions{page: page, sel: sel}
}

// Count returns the number of caption items currently rendered.
func (c *Captions) Count(ctx context.Context) (int, error) {
	return c.page.Count(ctx, c.sel.TranscriptItem)
}

// captionRow mirrors the JS extraction result.
type captionRow struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Item extracts the caption row at index from the live DOM. The speaker
// name prefers a bolded sub-element when the UI renders one.
func (c *Captions) Item(ctx context.Context, index int) (capture.CaptionItem, bool, error) {
	expr := fmt.Sprintf(`(() => {
		const items = document.querySelectorAll(%s);
		if (items.length <= %d) return null;
		const el = items[%d];
		const textEl = el.querySelector(%s);
		const nameEl = el.querySelector(%s) || el.querySelector(%s);
		return {
			speaker: nameEl ? nameEl.textContent.trim() : "",
			text: textEl ? textEl.textContent.trim() : ""
		};
	})()`,
		strconv.Quote(c.sel.TranscriptItem), index, index,
		strconv.Quote(c.sel.TranscriptText),
		strconv.Quote(c.sel.TranscriptPersonName+" b"),
		strconv.Quote(c.sel.TranscriptPersonName))

	var row *captionRow
	if err := c.page.Evaluate(ctx, expr, &row); err != nil {
		return capture.CaptionItem{}, false, err
	}
	if row == nil {
		return capture.CaptionItem{}, false, nil
	}
	return capture.CaptionItem{Speaker: row.Speaker, Text: row.Text}, true, nil
}

// Chat implements capture.ChatSource against the live page.
type Chat struct {
	page dom.Page
	sel  selectors.Table
}

// NewChat creates a chat source for the page.
func NewChat(page dom.Page, sel selectors.Table) *Chat {
	return &Chat{page: page, sel: sel}
}

// chatRow mirrors the JS extraction result.
type chatRow struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	TimeStamp string `json:"timeStamp"`
	ItemID    string `json:"itemId"`
	TextBoxID string `json:"textBoxId"`
}

// Recent extracts up to n of the newest chat items, oldest first.
func (c *Chat) Recent(ctx context.Context, n int) ([]capture.ChatItem, error) {
	expr := fmt.Sprintf(`(() => {
		const items = Array.from(document.querySelectorAll(%s)).slice(-%d);
		return items.map(el => {
			const senderEl = el.querySelector(%s);
			const textEl = el.querySelector(%s);
			const stampEl = el.querySelector(%s);
			const boxEl = el.querySelector(%s);
			return {
				sender: senderEl ? senderEl.textContent : "",
				text: textEl ? textEl.textContent : "",
				timeStamp: stampEl ? stampEl.textContent : "",
				itemId: el.id || "",
				textBoxId: boxEl ? (boxEl.id || "") : ""
			};
		});
	})()`,
		strconv.Quote(c.sel.ChatItem), n,
		strconv.Quote(c.sel.ChatPersonName),
		strconv.Quote(c.sel.ChatMessageText),
		strconv.Quote(c.sel.ChatTimeStamp),
		strconv.Quote(c.sel.ChatMessageBox))

	var rows []chatRow
	if err := c.page.Evaluate(ctx, expr, &rows); err != nil {
		return nil, err
	}

	items := make([]capture.ChatItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, capture.ChatItem{
			Sender:    row.Sender,
			Text:      row.Text,
			TimeStamp: row.TimeStamp,
			ItemID:    row.ItemID,
			TextBoxID: row.TextBoxID,
		})
	}
	return items, nil
}
