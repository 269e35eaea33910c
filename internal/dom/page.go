// Package dom abstracts the live meeting page behind small capability
// interfaces so the capture core never touches browser plumbing directly.
package dom

import (
	"context"
	"time"
)

// Page is a handle to the live meeting document.
type Page interface {
	// Exists reports whether at least one element matches the selector.
	Exists(ctx context.Context, selector string) (bool, error)
	// Count returns the number of elements matching the selector.
	Count(ctx context.Context, selector string) (int, error)
	// Text returns the trimmed text content of the first match, or "" if
	// nothing matches.
	Text(ctx context.Context, selector string) (string, error)
	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error
	// SendKeys types value into the first element matching the selector.
	SendKeys(ctx context.Context, selector, value string) error
	// Evaluate runs a JS expression and unmarshals its result into out.
	Evaluate(ctx context.Context, expression string, out interface{}) error
	// TargetID identifies the browser target hosting the meeting.
	TargetID() string
}

// Batch describes one delivered group of DOM mutations.
type Batch struct {
	Mutations int
	Time      time.Time
}

// Subscription is a live observer registration.
type Subscription interface {
	// Disconnect stops delivery. Safe to call more than once.
	Disconnect()
}

// Observer delivers mutation batches for a container element.
type Observer interface {
	// Observe watches the subtree of the first element matching selector
	// and invokes handler for each mutation batch. It fails with
	// ErrElementNotFound if the container is not present.
	Observe(ctx context.Context, selector string, handler func(Batch)) (Subscription, error)
}

// ClickWatcher reports clicks on a specific element.
type ClickWatcher interface {
	// WatchClick invokes fn once when the first element matching selector
	// is clicked.
	WatchClick(ctx context.Context, selector string, fn func()) (Subscription, error)
}
