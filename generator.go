package letterpdf

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-letterpdf/internal/assets"
	"github.com/alnah/go-letterpdf/internal/fileutil"
	"github.com/alnah/go-letterpdf/internal/pipeline"
	"github.com/alnah/go-letterpdf/internal/qrcode"
	"github.com/alnah/go-letterpdf/internal/textenc"
)

// QREncoder writes a QR code image to disk.
type QREncoder interface {
	Generate(ctx context.Context, payload string, width, height int, outputPath string) error
}

// TemplateRenderer renders a named template with data to markup.
type TemplateRenderer interface {
	Render(ctx context.Context, name string, data map[string]any) (string, error)
}

// MarkupNormalizer repairs markup into well-formed XHTML.
type MarkupNormalizer interface {
	Normalize(ctx context.Context, markup, encoding string) (string, error)
}

// DocumentRenderer lays out XHTML and serializes it as PDF.
type DocumentRenderer interface {
	RenderDocument(ctx context.Context, markup, baseURL string) ([]byte, error)
}

// pageRenderer is a DocumentRenderer that accepts per-job page settings.
type pageRenderer interface {
	RenderPage(ctx context.Context, markup, baseURL string, page *PageSettings) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ QREncoder        = (*qrcode.Generator)(nil)
	_ TemplateRenderer = (*pipeline.TemplateEngine)(nil)
	_ MarkupNormalizer = (*pipeline.XHTMLNormalizer)(nil)
	_ TemplateStore    = (*assets.Resolver)(nil)
	_ TemplateStore    = (*assets.S3Store)(nil)
)

// Generator runs the letter pipeline: QR image, template, XHTML
// normalization, PDF rendering. Create with NewGenerator, reuse across
// jobs, and Close when done. A Generator is not safe for concurrent use;
// use a GeneratorPool for parallel jobs.
type Generator struct {
	cfg        generatorConfig
	logger     zerolog.Logger
	qr         QREncoder
	templates  TemplateRenderer
	normalizer MarkupNormalizer
	document   DocumentRenderer
	ownsDoc    bool
}

// NewGenerator creates a Generator. The browser starts on the first render.
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:        cfg,
		logger:     cfg.logger,
		qr:         cfg.qr,
		templates:  cfg.templates,
		normalizer: cfg.normalizer,
		document:   cfg.document,
	}

	if g.templates == nil {
		store := cfg.store
		if store == nil {
			store = assets.NewEmbeddedStore()
		}
		mode, err := pipeline.ParseMode(cfg.templateMode)
		if err != nil {
			return nil, convertError(err)
		}
		g.templates = pipeline.NewTemplateEngine(store,
			pipeline.WithMode(mode),
			pipeline.WithClock(cfg.now),
		)
	}
	if g.normalizer == nil {
		g.normalizer = pipeline.NewXHTMLNormalizer()
	}
	if g.document == nil {
		r, err := newPDFRenderer(cfg.engine, nil, cfg)
		if err != nil {
			return nil, err
		}
		g.document = r
		g.ownsDoc = true
	}

	return g, nil
}

// Generate renders the job and writes the PDF to job.OutputPath. Nothing
// is written when any step other than the QR image fails; a failed write
// removes the partial file.
func (g *Generator) Generate(ctx context.Context, job Job) (*Result, error) {
	res, err := g.Render(ctx, job)
	if err != nil {
		return res, err
	}

	err = g.step(res, StepWrite, func() error {
		if err := fileutil.WriteFile(job.OutputPath, res.PDF); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	res.OutputPath = job.OutputPath
	g.logger.Info().
		Str("output", job.OutputPath).
		Int("pages", res.Pages).
		Msg("letter written")
	return res, nil
}

// Render runs every step but the final write and returns the PDF bytes.
//
// A QR failure does not stop the pipeline: it is logged, recorded in
// Result.QRErr, and the document renders with whatever image exists at the
// QR path. Any other failure stops the pipeline and is returned, matching
// one of the package's sentinel errors.
func (g *Generator) Render(ctx context.Context, job Job) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	res := &Result{}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := job.Validate(); err != nil {
		return res, err
	}

	log := g.logger.With().Str("template", job.TemplateName).Logger()

	// QR image: continue on error.
	qrErr := g.step(res, StepQR, func() error {
		enc, err := g.qrEncoder(job.QR)
		if err != nil {
			return convertError(err)
		}
		return convertError(enc.Generate(ctx, job.QR.Payload, job.QR.Width, job.QR.Height, job.QR.ImagePath))
	})
	if qrErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.QRErr = qrErr
		log.Warn().Err(qrErr).Str("path", job.QR.ImagePath).Msg("QR image not generated; continuing")
	}

	data, err := job.templateData(g.cfg.now())
	if err != nil {
		return res, err
	}

	var markup string
	err = g.step(res, StepTemplate, func() error {
		var err error
		markup, err = g.templates.Render(ctx, job.TemplateName, data)
		return convertError(err)
	})
	if err != nil {
		return res, err
	}

	// Rendered templates are Go strings, so the markup is UTF-8 whatever
	// the encoding of the template source.
	var xhtml string
	err = g.step(res, StepNormalize, func() error {
		var err error
		xhtml, err = g.normalizer.Normalize(ctx, markup, textenc.DefaultEncoding)
		return convertError(err)
	})
	if err != nil {
		return res, err
	}

	baseURL, err := pipeline.BaseURLFromDir(job.BaseDir)
	if err != nil {
		return res, convertError(err)
	}

	err = g.step(res, StepRender, func() error {
		var err error
		if pr, ok := g.document.(pageRenderer); ok {
			res.PDF, err = pr.RenderPage(ctx, xhtml, baseURL, job.Page)
		} else {
			res.PDF, err = g.document.RenderDocument(ctx, xhtml, baseURL)
		}
		return convertError(err)
	})
	if err != nil {
		return res, err
	}

	if pages, err := CountPages(res.PDF); err != nil {
		log.Warn().Err(err).Msg("cannot count pages")
	} else {
		res.Pages = pages
	}

	log.Debug().Int("bytes", len(res.PDF)).Int("pages", res.Pages).Msg("letter rendered")
	return res, nil
}

// step runs fn, timing it and appending a StepResult to res.
func (g *Generator) step(res *Result, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	res.Steps = append(res.Steps, StepResult{Name: name, Duration: d, Err: err})

	g.logger.Debug().Err(err).Str("step", name).Dur("duration", d).Msg("step finished")
	return err
}

// qrEncoder returns the configured encoder, or one built for spec.
func (g *Generator) qrEncoder(spec QRSpec) (QREncoder, error) {
	if g.qr != nil {
		return g.qr, nil
	}
	level, err := qrcode.ParseLevel(spec.Level)
	if err != nil {
		return nil, err
	}
	opts := []qrcode.Option{qrcode.WithLevel(level)}
	if spec.LogoPath != "" {
		opts = append(opts, qrcode.WithLogo(spec.LogoPath))
	}
	return qrcode.New(opts...), nil
}

// Close releases the browser if the generator created it.
func (g *Generator) Close() error {
	if !g.ownsDoc {
		return nil
	}
	if c, ok := g.document.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
