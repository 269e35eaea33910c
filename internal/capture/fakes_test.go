package capture

import (
	"context"
	"sync"

	"github.com/codebuildervaibhav/meeting-capture/internal/types"
)

// fakeMirror records persisted keys in memory.
type fakeMirror struct {
	mu   sync.Mutex
	sets map[string]interface{}
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{sets: make(map[string]interface{})}
}

func (m *fakeMirror) Set(key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[key] = value
	return nil
}

func (m *fakeMirror) get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.sets[key]
	return v, ok
}

// fakeAlerter counts status banners.
type fakeAlerter struct {
	mu     sync.Mutex
	alerts []types.Status
}

func (a *fakeAlerter) Alert(status types.Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, status)
}

func (a *fakeAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

// fakeCaptions serves a scripted caption container.
type fakeCaptions struct {
	mu    sync.Mutex
	items []CaptionItem
	err   error
}

func (f *fakeCaptions) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(f.items), nil
}

func (f *fakeCaptions) Item(ctx context.Context, index int) (CaptionItem, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return CaptionItem{}, false, f.err
	}
	if index < 0 || index >= len(f.items) {
		return CaptionItem{}, false, nil
	}
	return f.items[index], true, nil
}

func (f *fakeCaptions) set(items ...CaptionItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

// fakeChat serves a scripted chat container and counts extraction passes.
type fakeChat struct {
	mu     sync.Mutex
	items  []ChatItem
	err    error
	passes int
}

func (f *fakeChat) Recent(ctx context.Context, n int) ([]ChatItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passes++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > n {
		return f.items[len(f.items)-n:], nil
	}
	return f.items, nil
}

func (f *fakeChat) set(items ...ChatItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

func (f *fakeChat) passCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passes
}
