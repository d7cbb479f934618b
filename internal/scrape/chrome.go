package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

type ChromeOptions struct {
	Headless bool
	// UserDataDir keeps the dashboard session between runs.
	UserDataDir string
	// LoadWait is how long to let a page render after navigation.
	LoadWait time.Duration
}

// Chrome drives a local Chrome window through the DevTools protocol.
type Chrome struct {
	ctx      context.Context
	cancel   func()
	loadWait time.Duration
}

func NewChrome(ctx context.Context, opts ChromeOptions) (*Chrome, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", opts.Headless))
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// Start the browser now so a missing Chrome fails before any prompt.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}
	return &Chrome{ctx: browserCtx, cancel: cancel, loadWait: opts.LoadWait}, nil
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := c.bind(ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Navigate(url), chromedp.Sleep(c.loadWait))
}

func (c *Chrome) PageSource(ctx context.Context) (string, error) {
	runCtx, cancel := c.bind(ctx)
	defer cancel()
	var src string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &src, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return src, nil
}

func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

// bind returns a child of the browser context that is also cancelled with ctx.
func (c *Chrome) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(c.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
