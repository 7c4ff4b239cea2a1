// Package capture produces raw captures: the outerHTML of a live page as
// the browser rendered it, after client-side scripts have run.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Options controls a single headless capture.
type Options struct {
	URL     string
	Wait    time.Duration
	Timeout time.Duration
	// Scroll to the bottom before capturing so viewport-triggered widgets
	// and lazy images initialize the way a visitor would see them.
	Scroll bool
}

const scrollScript = `window.scrollTo(0, document.body.scrollHeight)`

// OuterHTML navigates to opts.URL in a headless browser and returns
// document.documentElement.outerHTML.
func OuterHTML(ctx context.Context, opts Options) (string, error) {
	if opts.URL == "" {
		return "", errors.New("capture: url is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	timeoutCtx, cancel := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	tasks := []chromedp.Action{
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body"),
	}
	if opts.Scroll {
		tasks = append(tasks, chromedp.Evaluate(scrollScript, nil))
	}
	if opts.Wait > 0 {
		tasks = append(tasks, chromedp.Sleep(opts.Wait))
	}

	start := time.Now()
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return "", fmt.Errorf("navigate %s: %w", opts.URL, err)
	}
	var outer string
	if err := chromedp.Run(timeoutCtx, chromedp.Evaluate(`document.documentElement.outerHTML`, &outer)); err != nil {
		return "", fmt.Errorf("read outerHTML: %w", err)
	}
	log.Debug().Str("url", opts.URL).Dur("took", time.Since(start)).Int("bytes", len(outer)).Msg("captured page")
	return "<!DOCTYPE html>" + outer, nil
}
