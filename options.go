package letterpdf

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-letterpdf/internal/pipeline"
)

// Option configures a Generator.
type Option func(*generatorConfig)

// generatorConfig holds the values set by options.
type generatorConfig struct {
	timeout    time.Duration
	engine     string
	browserBin string
	noSandbox  bool
	remoteURL  string
	logger     zerolog.Logger
	now        func() time.Time

	store        TemplateStore
	templateMode string

	qr         QREncoder
	templates  TemplateRenderer
	normalizer MarkupNormalizer
	document   DocumentRenderer

	err error // first invalid option
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		timeout:      defaultTimeout,
		engine:       EngineRod,
		logger:       zerolog.Nop(),
		now:          time.Now,
		templateMode: string(pipeline.ModeHTML),
	}
}

func applyOptions(opts []Option) (generatorConfig, error) {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, cfg.err
}

func (c *generatorConfig) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *generatorConfig) browserOptions() browserOptions {
	return browserOptions{
		bin:       c.browserBin,
		noSandbox: c.noSandbox,
		remoteURL: c.remoteURL,
		timeout:   c.timeout,
		logger:    c.logger,
	}
}

// WithTimeout sets the rendering timeout (page load and print).
// Panics if d is not positive.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("letterpdf: WithTimeout duration must be positive")
	}
	return func(c *generatorConfig) {
		c.timeout = d
	}
}

// WithEngine selects the browser driver: EngineRod (default) or
// EngineChromedp.
func WithEngine(name string) Option {
	return func(c *generatorConfig) {
		switch name {
		case EngineRod, EngineChromedp:
			c.engine = name
		default:
			c.fail(fmt.Errorf("%w: %q", ErrInvalidEngine, name))
		}
	}
}

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *generatorConfig) {
		c.logger = l
	}
}

// WithBrowserBin uses a specific Chrome or Chromium binary.
func WithBrowserBin(path string) Option {
	return func(c *generatorConfig) {
		c.browserBin = path
	}
}

// WithNoSandbox disables the Chrome sandbox (containers, CI, root).
func WithNoSandbox(v bool) Option {
	return func(c *generatorConfig) {
		c.noSandbox = v
	}
}

// WithRemoteURL connects the chromedp engine to a running browser through
// its DevTools websocket URL instead of launching one.
func WithRemoteURL(url string) Option {
	return func(c *generatorConfig) {
		c.remoteURL = url
	}
}

// WithClock sets the time source for "auto" dates and the template "now"
// function.
func WithClock(now func() time.Time) Option {
	return func(c *generatorConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTemplateStore loads templates from store instead of the embedded
// letters. See NewTemplateStore and NewS3TemplateStore.
func WithTemplateStore(store TemplateStore) Option {
	return func(c *generatorConfig) {
		c.store = store
	}
}

// WithTemplateMode selects "html" (contextual escaping, default) or "text".
func WithTemplateMode(mode string) Option {
	return func(c *generatorConfig) {
		m, err := pipeline.ParseMode(mode)
		if err != nil {
			c.fail(convertError(err))
			return
		}
		c.templateMode = string(m)
	}
}

// WithQREncoder replaces the QR step. By default each job gets an encoder
// built from its QRSpec level and logo.
func WithQREncoder(e QREncoder) Option {
	return func(c *generatorConfig) {
		c.qr = e
	}
}

// WithTemplateRenderer replaces the template step. WithTemplateStore and
// WithTemplateMode are then ignored.
func WithTemplateRenderer(r TemplateRenderer) Option {
	return func(c *generatorConfig) {
		c.templates = r
	}
}

// WithNormalizer replaces the XHTML normalization step.
func WithNormalizer(n MarkupNormalizer) Option {
	return func(c *generatorConfig) {
		c.normalizer = n
	}
}

// WithDocumentRenderer replaces the PDF step. The generator does not close
// a renderer it did not create.
func WithDocumentRenderer(r DocumentRenderer) Option {
	return func(c *generatorConfig) {
		c.document = r
	}
}
