package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-letterpdf/internal/textenc"
)

// FilesystemStore loads templates from {root}/{name}{suffix}.
type FilesystemStore struct {
	root     string
	suffix   string
	encoding string
}

// StoreOption configures FilesystemStore and S3Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	suffix   string
	encoding string
}

// WithSuffix sets the file suffix (default ".html").
func WithSuffix(suffix string) StoreOption {
	return func(o *storeOptions) { o.suffix = suffix }
}

// WithEncoding sets the character encoding of template files (default UTF-8).
func WithEncoding(label string) StoreOption {
	return func(o *storeOptions) { o.encoding = label }
}

func applyStoreOptions(opts []StoreOption) (storeOptions, error) {
	o := storeOptions{encoding: textenc.DefaultEncoding}
	for _, opt := range opts {
		opt(&o)
	}
	o.suffix = normalizeSuffix(o.suffix)
	if _, err := textenc.Lookup(o.encoding); err != nil {
		return o, err
	}
	return o, nil
}

// NewFilesystemStore creates a FilesystemStore rooted at root.
// Returns ErrInvalidBasePath if root is not a readable directory, or
// textenc.ErrUnsupportedEncoding for an unknown encoding label.
func NewFilesystemStore(root string, opts ...StoreOption) (*FilesystemStore, error) {
	o, err := applyStoreOptions(opts)
	if err != nil {
		return nil, err
	}

	if root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	// Containment checks compare resolved paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}
	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemStore{root: absPath, suffix: o.suffix, encoding: o.encoding}, nil
}

// Root returns the resolved root directory.
func (f *FilesystemStore) Root() string { return f.root }

// LoadTemplate reads {root}/{name}{suffix} and decodes it to UTF-8.
func (f *FilesystemStore) LoadTemplate(_ context.Context, name string) (string, error) {
	if err := ValidateTemplateName(name); err != nil {
		return "", err
	}

	filePath := filepath.Join(f.root, filepath.FromSlash(name)+f.suffix)
	content, err := f.read(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
		}
		return "", err
	}
	return content, nil
}

// LoadPartials reads every {root}/partials/*{suffix}. A missing partials
// directory yields an empty map.
func (f *FilesystemStore) LoadPartials(_ context.Context) (map[string]string, error) {
	dir := filepath.Join(f.root, partialsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}

	partials := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), f.suffix) {
			continue
		}
		content, err := f.read(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		partials[strings.TrimSuffix(entry.Name(), f.suffix)] = content
	}
	return partials, nil
}

// ListTemplates returns template names under root, partials excluded.
func (f *FilesystemStore) ListTemplates(_ context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != f.root && (d.Name() == partialsDir || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(p, f.suffix) {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), f.suffix))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}
	sort.Strings(names)
	return names, nil
}

// read checks containment, reads and decodes one file. Not-exist errors are
// returned unwrapped so callers can map them.
func (f *FilesystemStore) read(filePath string) (string, error) {
	if err := f.verifyPathContainment(filePath); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}

	content, err := textenc.Decode(data, f.encoding)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}
	return content, nil
}

// verifyPathContainment ensures the resolved file path is within root,
// following symlinks.
func (f *FilesystemStore) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// A missing file keeps its unresolved path; the read fails afterwards.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	if !strings.HasPrefix(absFilePath, f.root+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}
	return nil
}

// Compile-time interface checks.
var (
	_ TemplateStore = (*FilesystemStore)(nil)
	_ Lister        = (*FilesystemStore)(nil)
)
