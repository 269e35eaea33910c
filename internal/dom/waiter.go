package dom

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrElementNotFound indicates a selector never resolved within its timeout.
var ErrElementNotFound = errors.New("element not found")

const (
	// frameInterval approximates animation-frame cadence for UI waits.
	frameInterval = 16 * time.Millisecond
	// waitPollInterval is the cadence of the time-boxed waiter.
	waitPollInterval = 100 * time.Millisecond
)

// WaitFrame polls at frame cadence until the selector matches, optionally
// requiring an element whose text content equals text exactly. It has no
// timeout of its own; cancellation comes from ctx.
func WaitFrame(ctx context.Context, page Page, selector, text string) error {
	for {
		found, err := matches(ctx, page, selector, text)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(frameInterval):
		}
	}
}

// WaitTimeout polls every 100ms until the selector matches, failing with
// ErrElementNotFound once the timeout elapses.
func WaitTimeout(ctx context.Context, page Page, selector string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		found, err := page.Exists(ctx, selector)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitPollInterval):
		}
	}
}

// matches checks a selector, optionally against exact text content.
func matches(ctx context.Context, page Page, selector, text string) (bool, error) {
	if text == "" {
		return page.Exists(ctx, selector)
	}
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%s)).some(el => el.textContent === %s)`,
		strconv.Quote(selector), strconv.Quote(text))
	var found bool
	if err := page.Evaluate(ctx, expr, &found); err != nil {
		return false, err
	}
	return found, nil
}
