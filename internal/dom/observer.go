package dom

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// observerSeq hands out unique slots in the injected registries.
var observerSeq atomic.Int64

// PollObserver bridges the page's MutationObserver to Go handlers. A
// MutationObserver is installed in the page and its batch counts are
// drained by a fixed-cadence poll; each non-empty drain is delivered as
// one Batch. It also implements ClickWatcher with the same technique.
type PollObserver struct {
	page     Page
	interval time.Duration
}

// NewPollObserver creates an observer polling the page every interval.
func NewPollObserver(page Page, interval time.Duration) *PollObserver {
	return &PollObserver{page: page, interval: interval}
}

// Observe installs a MutationObserver on the first element matching
// selector (childList, attributes, subtree) and delivers drained batches
// to handler until the subscription disconnects.
func (o *PollObserver) Observe(ctx context.Context, selector string, handler func(Batch)) (Subscription, error) {
	id := fmt.Sprintf("q%d", observerSeq.Add(1))

	install := fmt.Sprintf(`(() => {
		const target = document.querySelector(%s);
		if (!target) return false;
		window.__capQueue = window.__capQueue || {};
		window.__capObs = window.__capObs || {};
		window.__capQueue[%q] = 0;
		const obs = new MutationObserver((muts) => { window.__capQueue[%q] += muts.length; });
		obs.observe(target, { childList: true, attributes: true, subtree: true });
		window.__capObs[%q] = obs;
		return true;
	})()`, strconv.Quote(selector), id, id, id)

	var ok bool
	if err := o.page.Evaluate(ctx, install, &ok); err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}

	drain := fmt.Sprintf(`(() => {
		const n = window.__capQueue[%q] || 0;
		window.__capQueue[%q] = 0;
		return n;
	})()`, id, id)

	sub := &pollSub{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.stop:
				o.teardown(id)
				return
			case <-ticker.C:
				var n int
				if err := o.page.Evaluate(ctx, drain, &n); err != nil {
					log.Printf("Observer %s: drain failed: %v", id, err)
					continue
				}
				if n > 0 {
					handler(Batch{Mutations: n, Time: time.Now()})
				}
			}
		}
	}()

	return sub, nil
}

// WatchClick installs a click listener on the first element matching
// selector and invokes fn exactly once when the click flag trips.
func (o *PollObserver) WatchClick(ctx context.Context, selector string, fn func()) (Subscription, error) {
	id := fmt.Sprintf("c%d", observerSeq.Add(1))

	install := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		window.__capClicks = window.__capClicks || {};
		window.__capClicks[%q] = false;
		el.addEventListener("click", () => { window.__capClicks[%q] = true; });
		return true;
	})()`, strconv.Quote(selector), id, id)

	var ok bool
	if err := o.page.Evaluate(ctx, install, &ok); err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}

	check := fmt.Sprintf(`window.__capClicks[%q] === true`, id)

	sub := &pollSub{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.stop:
				return
			case <-ticker.C:
				var clicked bool
				if err := o.page.Evaluate(ctx, check, &clicked); err != nil {
					continue
				}
				if clicked {
					fn()
					return
				}
			}
		}
	}()

	return sub, nil
}

// teardown disconnects the in-page observer for id, best effort.
func (o *PollObserver) teardown(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	expr := fmt.Sprintf(
		`(() => { if (window.__capObs && window.__capObs[%q]) { window.__capObs[%q].disconnect(); } return true; })()`,
		id, id)
	var ok bool
	if err := o.page.Evaluate(ctx, expr, &ok); err != nil {
		log.Printf("Observer %s: disconnect failed: %v", id, err)
	}
}

// pollSub is a Subscription backed by a polling goroutine.
type pollSub struct {
	stop chan struct{}
	once sync.Once
}

// Disconnect stops delivery. Safe to call more than once.
func (s *pollSub) Disconnect() {
	s.once.Do(func() { close(s.stop) })
}
