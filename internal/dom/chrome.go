package dom

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// BrowserOptions controls how the Chrome instance is launched.
type BrowserOptions struct {
	Headless    bool
	UserAgent   string
	UserDataDir string
}

// ChromePage implements Page against a chromedp browser tab.
type ChromePage struct {
	ctx context.Context
}

// NewBrowser launches a Chrome instance configured for unattended meeting
// capture (fake media devices, no automation banners) and returns a page
// bound to a fresh tab. The returned cancel tears the whole browser down.
func NewBrowser(ctx context.Context, opts BrowserOptions) (*ChromePage, context.CancelFunc, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("use-fake-ui-for-media-stream", true),
		chromedp.Flag("use-fake-device-for-media-stream", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	cancel := func() {
		cancelTab()
		cancelAlloc()
	}

	// Start the browser process up front so launch failures surface here
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	return &ChromePage{ctx: tabCtx}, cancel, nil
}

// Navigate loads url in the tab and suppresses native dialogs that would
// otherwise block unattended automation.
func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx,
		chromedp.Navigate(url),
		chromedp.Evaluate(`
			window.alert = function() { return; };
			window.confirm = function() { return true; };
			window.prompt = function() { return null; };
			true`, nil),
	)
}

// Reload refreshes the tab.
func (p *ChromePage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, chromedp.Reload())
}

// Exists reports whether the selector matches at least one element.
func (p *ChromePage) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	expr := fmt.Sprintf(`document.querySelector(%s) !== null`, strconv.Quote(selector))
	if err := p.Evaluate(ctx, expr, &found); err != nil {
		return false, err
	}
	return found, nil
}

// Count returns the number of elements matching the selector.
func (p *ChromePage) Count(ctx context.Context, selector string) (int, error) {
	var count int
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, strconv.Quote(selector))
	if err := p.Evaluate(ctx, expr, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// Text returns the trimmed text content of the first match.
func (p *ChromePage) Text(ctx context.Context, selector string) (string, error) {
	var text string
	expr := fmt.Sprintf(
		`(() => { const el = document.querySelector(%s); return el ? el.textContent : ""; })()`,
		strconv.Quote(selector))
	if err := p.Evaluate(ctx, expr, &text); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Click clicks the first element matching the selector.
func (p *ChromePage) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// SendKeys types value into the first element matching the selector.
func (p *ChromePage) SendKeys(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

// Evaluate runs a JS expression in the page and unmarshals the result.
func (p *ChromePage) Evaluate(ctx context.Context, expression string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx,
		chromedp.Evaluate(expression, out, func(ep *runtime.EvaluateParams) *runtime.EvaluateParams {
			return ep.WithAwaitPromise(true)
		}))
}

// TargetID identifies the browser target hosting the meeting tab.
func (p *ChromePage) TargetID() string {
	c := chromedp.FromContext(p.ctx)
	if c == nil || c.Target == nil {
		return ""
	}
	return string(c.Target.TargetID)
}
