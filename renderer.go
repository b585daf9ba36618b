package letterpdf

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	"github.com/alnah/go-letterpdf/internal/fileutil"
	"github.com/alnah/go-letterpdf/internal/pipeline"
)

// Rendering engines.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

const defaultTimeout = 30 * time.Second

// pdfMagic starts every PDF file.
var pdfMagic = []byte("%PDF-")

// printEngine prints a document loaded from a URL to PDF bytes.
type printEngine interface {
	PrintURL(ctx context.Context, url string, page *PageSettings) ([]byte, error)
	Close() error
}

// browserOptions configure how an engine finds and starts Chrome.
type browserOptions struct {
	bin       string // custom binary (default: engine lookup or ROD_BROWSER_BIN)
	noSandbox bool
	remoteURL string // chromedp only
	timeout   time.Duration
	logger    zerolog.Logger
}

// newPrintEngine creates the named engine. Browsers start lazily on the
// first print. ROD_BROWSER_BIN and ROD_NO_SANDBOX=1 apply to both engines.
func newPrintEngine(name string, opts browserOptions) (printEngine, error) {
	if opts.bin == "" {
		opts.bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" {
		opts.noSandbox = true
	}
	switch strings.ToLower(name) {
	case "", EngineRod:
		return newRodEngine(opts), nil
	case EngineChromedp:
		return newChromedpEngine(opts), nil
	}
	return nil, fmt.Errorf("%w: %q (expected %s or %s)", ErrInvalidEngine, name, EngineRod, EngineChromedp)
}

// PDFRenderer turns well-formed XHTML into PDF bytes with headless Chrome.
// It owns one browser; call Close when done.
type PDFRenderer struct {
	engine  printEngine
	page    *PageSettings
	timeout time.Duration
	logger  zerolog.Logger
}

// NewPDFRenderer creates a renderer for the named engine ("rod" or
// "chromedp"). page may be nil for DefaultPageSettings. Only the browser
// options (WithTimeout, WithLogger, WithBrowserBin, WithNoSandbox,
// WithRemoteURL) apply.
func NewPDFRenderer(engine string, page *PageSettings, opts ...Option) (*PDFRenderer, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newPDFRenderer(engine, page, cfg)
}

func newPDFRenderer(engine string, page *PageSettings, cfg generatorConfig) (*PDFRenderer, error) {
	e, err := newPrintEngine(engine, cfg.browserOptions())
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = DefaultPageSettings()
	}
	return &PDFRenderer{engine: e, page: page, timeout: cfg.timeout, logger: cfg.logger}, nil
}

// RenderDocument renders markup with the renderer's page settings.
// baseURL must be absolute; relative references in markup resolve against it.
func (r *PDFRenderer) RenderDocument(ctx context.Context, markup, baseURL string) ([]byte, error) {
	return r.RenderPage(ctx, markup, baseURL, r.page)
}

// RenderPage renders markup with explicit page settings (nil uses the
// renderer's).
func (r *PDFRenderer) RenderPage(ctx context.Context, markup, baseURL string, page *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page == nil {
		page = r.page
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if err := checkWellFormed(markup); err != nil {
		return nil, err
	}
	if _, err := pipeline.ValidateBaseURL(baseURL); err != nil {
		return nil, convertError(err)
	}

	doc := pipeline.InjectBaseHref(markup, baseURL)

	// The .xhtml extension makes Chrome use its XML parser.
	tmpPath, cleanup, err := fileutil.WriteTempFile(doc, "xhtml")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	pdf, err := r.engine.PrintURL(ctx, pipeline.PathToFileURL(tmpPath), page)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(pdf, pdfMagic) {
		return nil, fmt.Errorf("%w: output is not a PDF (%d bytes)", ErrLayout, len(pdf))
	}

	r.logger.Debug().
		Int("bytes", len(pdf)).
		Dur("duration", time.Since(start)).
		Msg("document rendered")
	return pdf, nil
}

// Close releases the browser.
func (r *PDFRenderer) Close() error {
	if r.engine != nil {
		return r.engine.Close()
	}
	return nil
}

// checkWellFormed parses markup strictly. It must be well-formed XML with
// exactly one root element.
func checkWellFormed(markup string) error {
	if strings.TrimSpace(markup) == "" {
		return ErrEmptyMarkup
	}

	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return fmt.Errorf("%w: second root element <%s>", ErrParse, t.Name.Local)
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("%w: text outside the root element", ErrParse)
			}
		}
	}
	if roots == 0 {
		return fmt.Errorf("%w: no root element", ErrParse)
	}
	return nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// Compile-time interface checks.
var (
	_ DocumentRenderer = (*PDFRenderer)(nil)
	_ pageRenderer     = (*PDFRenderer)(nil)
)
