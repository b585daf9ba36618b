package assets

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed templates
var templates embed.FS

const embeddedRoot = "templates"

// EmbeddedStore loads templates compiled into the binary.
type EmbeddedStore struct{}

// NewEmbeddedStore creates an EmbeddedStore.
func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{}
}

// LoadTemplate loads templates/{name}.html.
func (e *EmbeddedStore) LoadTemplate(_ context.Context, name string) (string, error) {
	if err := ValidateTemplateName(name); err != nil {
		return "", err
	}

	content, err := templates.ReadFile(path.Join(embeddedRoot, name+DefaultSuffix))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	return string(content), nil
}

// LoadPartials loads every templates/partials/*.html.
func (e *EmbeddedStore) LoadPartials(_ context.Context) (map[string]string, error) {
	entries, err := templates.ReadDir(path.Join(embeddedRoot, partialsDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}

	partials := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), DefaultSuffix) {
			continue
		}
		content, err := templates.ReadFile(path.Join(embeddedRoot, partialsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
		}
		partials[strings.TrimSuffix(entry.Name(), DefaultSuffix)] = string(content)
	}

	return partials, nil
}

// ListTemplates returns the embedded template names, partials excluded.
func (e *EmbeddedStore) ListTemplates(_ context.Context) ([]string, error) {
	var names []string
	err := fs.WalkDir(templates, embeddedRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == partialsDir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, DefaultSuffix) {
			rel := strings.TrimPrefix(p, embeddedRoot+"/")
			names = append(names, strings.TrimSuffix(rel, DefaultSuffix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}
	sort.Strings(names)
	return names, nil
}

// Compile-time interface checks.
var (
	_ TemplateStore = (*EmbeddedStore)(nil)
	_ Lister        = (*EmbeddedStore)(nil)
)
