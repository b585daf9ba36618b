package letterpdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-letterpdf/internal/assets"
)

// TemplateStore loads letter templates and shared partials by name.
type TemplateStore interface {
	LoadTemplate(ctx context.Context, name string) (string, error)
	LoadPartials(ctx context.Context) (map[string]string, error)
}

// S3Config locates templates in an S3 or S3-compatible bucket.
type S3Config = assets.S3Config

// StoreOptions configure how template files are read.
type StoreOptions struct {
	Suffix   string // file suffix, default ".html"
	Encoding string // character encoding label, default UTF-8
}

func (o StoreOptions) assetOptions() []assets.StoreOption {
	return []assets.StoreOption{assets.WithSuffix(o.Suffix), assets.WithEncoding(o.Encoding)}
}

// NewTemplateStore loads templates from dir, falling back to the built-in
// letters for names dir does not contain. An empty dir serves only the
// built-in letters.
func NewTemplateStore(dir string, opts StoreOptions) (TemplateStore, error) {
	r, err := assets.NewDirResolver(dir, opts.assetOptions()...)
	if err != nil {
		return nil, convertError(err)
	}
	return r, nil
}

// NewS3TemplateStore loads templates from s3://{Bucket}/{Prefix}, falling
// back to the built-in letters.
func NewS3TemplateStore(ctx context.Context, cfg S3Config, opts StoreOptions) (TemplateStore, error) {
	client, err := assets.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, convertError(err)
	}
	s3Store, err := assets.NewS3Store(client, cfg, opts.assetOptions()...)
	if err != nil {
		return nil, convertError(err)
	}
	return assets.NewResolver(s3Store), nil
}

// ErrNotListable is returned by ListTemplates for stores that cannot
// enumerate their contents.
var ErrNotListable = errors.New("template store cannot list templates")

// ListTemplates returns the template names available in store, sorted. A
// nil store lists the built-in letters.
func ListTemplates(ctx context.Context, store TemplateStore) ([]string, error) {
	if store == nil {
		store = assets.NewEmbeddedStore()
	}
	l, ok := store.(assets.Lister)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotListable, store)
	}
	names, err := l.ListTemplates(ctx)
	if err != nil {
		return nil, convertError(err)
	}
	return names, nil
}
