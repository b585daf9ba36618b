package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/alnah/go-letterpdf/internal/textenc"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewFilesystemStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeFile(t, file, []byte("x"))

	tests := []struct {
		name    string
		root    string
		opts    []StoreOption
		wantErr error
	}{
		{name: "valid directory", root: dir},
		{name: "empty path", root: "", wantErr: ErrInvalidBasePath},
		{name: "missing directory", root: filepath.Join(dir, "missing"), wantErr: ErrInvalidBasePath},
		{name: "file not directory", root: file, wantErr: ErrInvalidBasePath},
		{name: "unknown encoding", root: dir, opts: []StoreOption{WithEncoding("klingon")}, wantErr: textenc.ErrUnsupportedEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := NewFilesystemStore(tt.root, tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewFilesystemStore() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFilesystemStore() unexpected error: %v", err)
			}
			if !filepath.IsAbs(store.Root()) {
				t.Errorf("Root() = %q, want absolute path", store.Root())
			}
		})
	}
}

func TestFilesystemStore_LoadTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "template.html"), []byte("<p>custom</p>"))
	writeFile(t, filepath.Join(dir, "letters", "thanks.html"), []byte("<p>thanks</p>"))
	writeFile(t, filepath.Join(dir, "plain.tmpl"), []byte("plain"))

	store, err := NewFilesystemStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "top level", input: "template", want: "<p>custom</p>"},
		{name: "nested", input: "letters/thanks", want: "<p>thanks</p>"},
		{name: "other suffix ignored", input: "plain", wantErr: ErrTemplateNotFound},
		{name: "missing", input: "missing", wantErr: ErrTemplateNotFound},
		{name: "traversal", input: "../outside", wantErr: ErrInvalidTemplateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := store.LoadTemplate(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadTemplate(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadTemplate(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("LoadTemplate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilesystemStore_Suffix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "plain.tmpl"), []byte("plain"))

	for _, suffix := range []string{".tmpl", "tmpl"} {
		store, err := NewFilesystemStore(dir, WithSuffix(suffix))
		if err != nil {
			t.Fatal(err)
		}
		got, err := store.LoadTemplate(context.Background(), "plain")
		if err != nil {
			t.Fatalf("suffix %q: LoadTemplate() unexpected error: %v", suffix, err)
		}
		if got != "plain" {
			t.Errorf("suffix %q: LoadTemplate() = %q, want %q", suffix, got, "plain")
		}
	}
}

func TestFilesystemStore_Encoding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "latin.html"), []byte{'<', 'p', '>', 'C', 'a', 'f', 0xe9, '<', '/', 'p', '>'})

	latin, err := NewFilesystemStore(dir, WithEncoding("ISO-8859-1"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := latin.LoadTemplate(context.Background(), "latin")
	if err != nil {
		t.Fatalf("LoadTemplate() unexpected error: %v", err)
	}
	if got != "<p>Café</p>" {
		t.Errorf("LoadTemplate() = %q, want %q", got, "<p>Café</p>")
	}

	utf8Store, err := NewFilesystemStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := utf8Store.LoadTemplate(context.Background(), "latin"); !errors.Is(err, textenc.ErrDecode) {
		t.Errorf("LoadTemplate() as UTF-8 error = %v, want textenc.ErrDecode", err)
	}
}

func TestFilesystemStore_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}
	t.Parallel()

	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret.html"), []byte("secret"))

	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "secret.html"), filepath.Join(dir, "leak.html")); err != nil {
		t.Fatal(err)
	}

	store, err := NewFilesystemStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadTemplate(context.Background(), "leak"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadTemplate() error = %v, want ErrPathTraversal", err)
	}
}

func TestFilesystemStore_LoadPartials(t *testing.T) {
	t.Parallel()

	t.Run("reads partials directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "partials", "footer.html"), []byte("<p>foot</p>"))
		writeFile(t, filepath.Join(dir, "partials", "notes.txt"), []byte("ignored"))

		store, err := NewFilesystemStore(dir)
		if err != nil {
			t.Fatal(err)
		}
		partials, err := store.LoadPartials(context.Background())
		if err != nil {
			t.Fatalf("LoadPartials() unexpected error: %v", err)
		}
		if len(partials) != 1 || partials["footer"] != "<p>foot</p>" {
			t.Errorf("LoadPartials() = %v, want only footer", partials)
		}
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		t.Parallel()

		store, err := NewFilesystemStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		partials, err := store.LoadPartials(context.Background())
		if err != nil {
			t.Fatalf("LoadPartials() unexpected error: %v", err)
		}
		if len(partials) != 0 {
			t.Errorf("LoadPartials() = %v, want empty", partials)
		}
	})
}

func TestFilesystemStore_ListTemplates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "template.html"), []byte("a"))
	writeFile(t, filepath.Join(dir, "letters", "thanks.html"), []byte("b"))
	writeFile(t, filepath.Join(dir, "partials", "footer.html"), []byte("c"))
	writeFile(t, filepath.Join(dir, "qr", "code.png"), []byte("d"))

	store, err := NewFilesystemStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	names, err := store.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListTemplates() unexpected error: %v", err)
	}

	want := []string{"letters/thanks", "template"}
	if !slices.Equal(names, want) {
		t.Errorf("ListTemplates() = %v, want %v", names, want)
	}
}
