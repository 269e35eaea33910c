package dom

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedPage emulates the injected observer registries: installs succeed
// when the container is present, drains return and reset a queued count,
// click checks report a settable flag.
type scriptedPage struct {
	fakePage
	mu        sync.Mutex
	hasTarget bool
	queued    int
	clicked   bool
	drains    int
}

func (p *scriptedPage) Evaluate(ctx context.Context, expression string, out interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n, ok := out.(*int); ok {
		*n = p.queued
		p.queued = 0
		p.drains++
		return nil
	}
	if b, ok := out.(*bool); ok {
		if strings.Contains(expression, "__capClicks[") && strings.Contains(expression, "=== true") {
			*b = p.clicked
			return nil
		}
		*b = p.hasTarget
	}
	return nil
}

func (p *scriptedPage) queue(n int) {
	p.mu.Lock()
	p.queued += n
	p.mu.Unlock()
}

func (p *scriptedPage) click() {
	p.mu.Lock()
	p.clicked = true
	p.mu.Unlock()
}

func TestObserveMissingContainer(t *testing.T) {
	page := &scriptedPage{hasTarget: false}
	o := NewPollObserver(page, 10*time.Millisecond)

	_, err := o.Observe(context.Background(), ".missing", func(Batch) {})
	if err == nil {
		t.Fatal("expected error for a missing container")
	}
}

func TestObserveDeliversBatches(t *testing.T) {
	page := &scriptedPage{hasTarget: true}
	o := NewPollObserver(page, 10*time.Millisecond)

	batches := make(chan Batch, 10)
	sub, err := o.Observe(context.Background(), ".container", func(b Batch) { batches <- b })
	if err != nil {
		t.Fatalf("Observe failed: %v", err)
	}
	defer sub.Disconnect()

	page.queue(3)

	select {
	case b := <-batches:
		if b.Mutations != 3 {
			t.Errorf("expected 3 mutations in batch, got %d", b.Mutations)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("batch not delivered")
	}

	// Empty polls must not produce batches
	select {
	case b := <-batches:
		t.Errorf("unexpected batch for an empty queue: %+v", b)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestObserveDisconnectStopsDelivery(t *testing.T) {
	page := &scriptedPage{hasTarget: true}
	o := NewPollObserver(page, 10*time.Millisecond)

	batches := make(chan Batch, 10)
	sub, err := o.Observe(context.Background(), ".container", func(b Batch) { batches <- b })
	if err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	sub.Disconnect()
	sub.Disconnect() // must be safe twice
	time.Sleep(40 * time.Millisecond)

	page.queue(5)
	select {
	case b := <-batches:
		t.Errorf("batch delivered after disconnect: %+v", b)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestWatchClickFiresOnce(t *testing.T) {
	page := &scriptedPage{hasTarget: true}
	o := NewPollObserver(page, 10*time.Millisecond)

	fired := make(chan struct{}, 5)
	sub, err := o.WatchClick(context.Background(), "button.end", func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("WatchClick failed: %v", err)
	}
	defer sub.Disconnect()

	page.click()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("click callback not invoked")
	}

	// The watcher exits after the first hit even though the flag stays set
	select {
	case <-fired:
		t.Error("click callback fired more than once")
	case <-time.After(60 * time.Millisecond):
	}
}
