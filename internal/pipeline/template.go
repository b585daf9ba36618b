package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/alnah/go-letterpdf/internal/assets"
	"github.com/alnah/go-letterpdf/internal/dateutil"
)

// Sentinel errors for template rendering.
var (
	ErrTemplateSyntax = errors.New("template syntax error")
	ErrTemplateRender = errors.New("template rendering failed")
	ErrInvalidMode    = errors.New("invalid template mode")
)

// Mode selects the template dialect.
type Mode string

const (
	// ModeHTML uses html/template with contextual escaping.
	ModeHTML Mode = "html"
	// ModeText uses text/template without escaping.
	ModeText Mode = "text"
)

// ParseMode accepts "html" (or empty) and "text".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeHTML:
		return ModeHTML, nil
	case ModeText:
		return ModeText, nil
	}
	return "", fmt.Errorf("%w: %q (expected html or text)", ErrInvalidMode, s)
}

// TemplateEngine renders named templates from a store. Nothing is cached:
// every Render reads the template and partials again.
type TemplateEngine struct {
	store    assets.TemplateStore
	mode     Mode
	markdown *GoldmarkConverter
	now      func() time.Time
}

// EngineOption configures a TemplateEngine.
type EngineOption func(*TemplateEngine)

// WithMode sets the template dialect (default ModeHTML).
func WithMode(m Mode) EngineOption {
	return func(e *TemplateEngine) { e.mode = m }
}

// WithClock sets the time source behind the "now" template function.
func WithClock(now func() time.Time) EngineOption {
	return func(e *TemplateEngine) { e.now = now }
}

// NewTemplateEngine creates a TemplateEngine over store.
func NewTemplateEngine(store assets.TemplateStore, opts ...EngineOption) *TemplateEngine {
	e := &TemplateEngine{
		store:    store,
		mode:     ModeHTML,
		markdown: NewGoldmarkConverter(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the configured dialect.
func (e *TemplateEngine) Mode() Mode { return e.mode }

// Render loads name and its partials from the store and executes it with data.
// Store errors are returned as-is (assets.ErrTemplateNotFound and friends).
func (e *TemplateEngine) Render(ctx context.Context, name string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source, err := e.store.LoadTemplate(ctx, name)
	if err != nil {
		return "", err
	}
	partials, err := e.store.LoadPartials(ctx)
	if err != nil {
		return "", err
	}

	if data == nil {
		data = map[string]any{}
	}

	var out string
	switch e.mode {
	case ModeText:
		out, err = e.renderText(name, source, partials, data)
	case ModeHTML:
		out, err = e.renderHTML(name, source, partials, data)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, e.mode)
	}
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return out, nil
}

func (e *TemplateEngine) renderHTML(name, source string, partials map[string]string, data map[string]any) (string, error) {
	funcs := e.funcs(func(s string) any { return htmltemplate.HTML(s) })

	tmpl, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap(funcs)).Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
	}
	for _, pname := range partialNames(partials, name) {
		if _, err := tmpl.New(pname).Parse(partials[pname]); err != nil {
			return "", fmt.Errorf("%w: partial %q: %v", ErrTemplateSyntax, pname, err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		// Escaping problems only surface at execution time.
		var escErr *htmltemplate.Error
		if errors.As(err, &escErr) {
			return "", fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) renderText(name, source string, partials map[string]string, data map[string]any) (string, error) {
	funcs := e.funcs(func(s string) any { return s })

	tmpl, err := texttemplate.New(name).Funcs(texttemplate.FuncMap(funcs)).Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
	}
	for _, pname := range partialNames(partials, name) {
		if _, err := tmpl.New(pname).Parse(partials[pname]); err != nil {
			return "", fmt.Errorf("%w: partial %q: %v", ErrTemplateSyntax, pname, err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

// funcs builds the function map shared by both dialects. wrap marks
// Markdown output as safe HTML in html mode.
func (e *TemplateEngine) funcs(wrap func(string) any) map[string]any {
	return map[string]any{
		"markdown": func(s string) (any, error) {
			out, err := e.markdown.Convert(s)
			if err != nil {
				return nil, err
			}
			return wrap(out), nil
		},
		"formatDate": formatDate,
		"now":        e.now,
	}
}

// formatDate formats a time.Time (or an RFC 3339 / YYYY-MM-DD string) with
// an optional token layout such as "MMMM D, YYYY".
func formatDate(v any, layout ...string) (string, error) {
	l := ""
	if len(layout) > 0 {
		l = layout[0]
	}

	var t time.Time
	switch val := v.(type) {
	case time.Time:
		t = val
	case *time.Time:
		if val == nil {
			return "", nil
		}
		t = *val
	case string:
		parsed, err := parseDate(val)
		if err != nil {
			return "", err
		}
		t = parsed
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("formatDate: unsupported type %T", v)
	}

	return dateutil.Format(t, l)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("formatDate: cannot parse %q", s)
}

// partialNames returns partial names in a stable order, skipping one that
// would shadow the main template.
func partialNames(partials map[string]string, main string) []string {
	names := make([]string, 0, len(partials))
	for name := range partials {
		if name != main {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
