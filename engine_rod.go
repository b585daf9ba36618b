package letterpdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-letterpdf/internal/process"
)

// rodEngine prints with go-rod. Rod downloads Chromium on first run when no
// browser binary is configured.
type rodEngine struct {
	opts browserOptions

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodEngine(opts browserOptions) *rodEngine {
	return &rodEngine{opts: opts}
}

// ensureBrowser lazily launches and connects to the browser.
func (e *rodEngine) ensureBrowser() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New()

	if e.opts.bin != "" {
		l = l.Bin(e.opts.bin)
	}

	// Containers and CI runners usually lack the sandbox prerequisites.
	if e.opts.noSandbox || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.launcher = l
	e.browser = browser
	e.opts.logger.Debug().Str("engine", EngineRod).Int("pid", l.PID()).Msg("browser started")
	return nil
}

// PrintURL loads url in a new tab and prints it.
func (e *rodEngine) PrintURL(ctx context.Context, url string, page *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	tab, err := e.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = tab.Close() }()

	timeout := e.opts.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	tab = tab.Context(ctx).Timeout(timeout)
	if err := tab.WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := tab.PDF(printParams(page))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: print: %v", ErrLayout, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrLayout, err)
	}
	return pdf, nil
}

// printParams maps page settings onto the DevTools print call.
func printParams(page *PageSettings) *proto.PagePrintToPDF {
	w, h := page.dimensions()
	m := page.margin()
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(w),
		PaperHeight:     floatPtr(h),
		MarginTop:       floatPtr(m),
		MarginBottom:    floatPtr(m),
		MarginLeft:      floatPtr(m),
		MarginRight:     floatPtr(m),
		PrintBackground: true,
	}
}

// Close closes the browser and kills its process tree.
func (e *rodEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.browser != nil {
		err = e.browser.Close()
		e.browser = nil
	}
	if e.launcher != nil {
		process.KillProcessGroup(e.launcher.PID())
		e.launcher.Kill()
		e.launcher = nil
	}
	return err
}
