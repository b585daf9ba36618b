package assets

import (
	"context"
	"strings"
)

// DefaultSuffix is appended to template and partial names.
const DefaultSuffix = ".html"

// partialsDir holds shared fragments below a store root.
const partialsDir = "partials"

// TemplateStore loads template sources by name.
// Implementations may read from embedded files, disk, S3 or memory.
type TemplateStore interface {
	// LoadTemplate returns the UTF-8 source of the named template.
	// Returns an error matching ErrTemplateNotFound if it does not exist.
	LoadTemplate(ctx context.Context, name string) (string, error)

	// LoadPartials returns every shared fragment keyed by name (no suffix).
	// A store without partials returns an empty map.
	LoadPartials(ctx context.Context) (map[string]string, error)
}

// Lister is implemented by stores that can enumerate their templates.
type Lister interface {
	ListTemplates(ctx context.Context) ([]string, error)
}

// normalizeSuffix defaults an empty suffix and adds the leading dot.
func normalizeSuffix(suffix string) string {
	if suffix == "" {
		return DefaultSuffix
	}
	if !strings.HasPrefix(suffix, ".") {
		return "." + suffix
	}
	return suffix
}
