package letterpdf

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// chromedpEngine prints over the Chrome DevTools Protocol with chromedp. It
// launches a local browser, or attaches to one when remoteURL is set.
type chromedpEngine struct {
	opts browserOptions

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func newChromedpEngine(opts browserOptions) *chromedpEngine {
	return &chromedpEngine{opts: opts}
}

// allocatorOptions returns the exec allocator flags for a headless print
// browser.
func (e *chromedpEngine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if e.opts.bin != "" {
		opts = append(opts, chromedp.ExecPath(e.opts.bin))
	}
	if e.opts.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// ensureBrowser lazily creates the allocator and starts the browser.
func (e *chromedpEngine) ensureBrowser() error {
	if e.browserCtx != nil {
		return nil
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if e.opts.remoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), e.opts.remoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), e.allocatorOptions()...)
	}

	logger := e.opts.logger
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug().Str("engine", EngineChromedp).Msgf(format, args...)
		}),
	)

	// Running no actions starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.allocCancel = allocCancel
	e.browserCtx = browserCtx
	e.browserCancel = browserCancel
	logger.Debug().Str("engine", EngineChromedp).Str("remote", e.opts.remoteURL).Msg("browser started")
	return nil
}

// PrintURL loads url in a new tab and prints it.
func (e *chromedpEngine) PrintURL(ctx context.Context, url string, settings *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx)
	defer tabCancel()

	// Tie the tab to the caller's context without cancelling the browser.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	if err := chromedp.Run(tabCtx, chromedp.Navigate(url)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	w, h := settings.dimensions()
	m := settings.margin()

	var pdf []byte
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(w).
			WithPaperHeight(h).
			WithMarginTop(m).
			WithMarginRight(m).
			WithMarginBottom(m).
			WithMarginLeft(m).
			Do(ctx)
		if err != nil {
			return err
		}
		pdf = data
		return nil
	}))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: print: %v", ErrLayout, err)
	}
	return pdf, nil
}

// Close stops the browser. For a remote browser only the connection is
// closed.
func (e *chromedpEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
		e.browserCtx = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
	return nil
}
