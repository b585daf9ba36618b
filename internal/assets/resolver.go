package assets

import (
	"context"
	"sort"
)

// Resolver combines a custom store with the embedded templates. The custom
// store wins; the embedded store is consulted only when the custom one
// reports the template as not found.
type Resolver struct {
	custom   TemplateStore // nil when only embedded templates are used
	embedded TemplateStore
}

// NewResolver creates a Resolver. A nil custom store means embedded only.
func NewResolver(custom TemplateStore) *Resolver {
	return &Resolver{custom: custom, embedded: NewEmbeddedStore()}
}

// NewDirResolver creates a Resolver over a FilesystemStore at dir.
// An empty dir means embedded only.
func NewDirResolver(dir string, opts ...StoreOption) (*Resolver, error) {
	if dir == "" {
		return NewResolver(nil), nil
	}
	fsStore, err := NewFilesystemStore(dir, opts...)
	if err != nil {
		return nil, err
	}
	return NewResolver(fsStore), nil
}

// LoadTemplate loads name from the custom store, then the embedded one.
func (r *Resolver) LoadTemplate(ctx context.Context, name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate(ctx, name)
	}

	content, err := r.custom.LoadTemplate(ctx, name)
	if err == nil {
		return content, nil
	}
	// Only fall back for "not found", not for invalid names or read errors.
	if !IsNotFound(err) {
		return "", err
	}
	return r.embedded.LoadTemplate(ctx, name)
}

// LoadPartials merges embedded partials with custom ones; custom wins.
func (r *Resolver) LoadPartials(ctx context.Context) (map[string]string, error) {
	partials, err := r.embedded.LoadPartials(ctx)
	if err != nil {
		return nil, err
	}
	if r.custom == nil {
		return partials, nil
	}

	custom, err := r.custom.LoadPartials(ctx)
	if err != nil {
		return nil, err
	}
	for name, content := range custom {
		partials[name] = content
	}
	return partials, nil
}

// ListTemplates returns the union of template names from both stores.
// Stores that cannot list are skipped.
func (r *Resolver) ListTemplates(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, store := range []TemplateStore{r.custom, r.embedded} {
		lister, ok := store.(Lister)
		if !ok {
			continue
		}
		names, err := lister.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Compile-time interface checks.
var (
	_ TemplateStore = (*Resolver)(nil)
	_ Lister        = (*Resolver)(nil)
)
