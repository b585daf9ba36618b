package pipeline

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestInjectBaseHref(t *testing.T) {
	t.Parallel()

	const base = "file:///tmp/letters/"

	tests := []struct {
		name   string
		markup string
		base   string
		want   string
	}{
		{
			name:   "inserted first in head",
			markup: `<html><head><title>x</title></head><body></body></html>`,
			base:   base,
			want:   `<html><head><base href="file:///tmp/letters/" /><title>x</title></head><body></body></html>`,
		},
		{
			name:   "head with attributes",
			markup: `<html><head profile="p"><title>x</title></head></html>`,
			base:   base,
			want:   `<html><head profile="p"><base href="file:///tmp/letters/" /><title>x</title></head></html>`,
		},
		{
			name:   "existing base kept",
			markup: `<html><head><base href="https://cdn.example.com/" /></head></html>`,
			base:   base,
			want:   `<html><head><base href="https://cdn.example.com/" /></head></html>`,
		},
		{
			name:   "self-closed head expanded",
			markup: `<html><head/><body></body></html>`,
			base:   base,
			want:   `<html><head><base href="file:///tmp/letters/" /></head><body></body></html>`,
		},
		{
			name:   "missing head created",
			markup: `<html xmlns="http://www.w3.org/1999/xhtml"><body></body></html>`,
			base:   base,
			want:   `<html xmlns="http://www.w3.org/1999/xhtml"><head><base href="file:///tmp/letters/" /></head><body></body></html>`,
		},
		{
			name:   "header is not head",
			markup: `<html><body><header>x</header></body></html>`,
			base:   base,
			want:   `<html><head><base href="file:///tmp/letters/" /></head><body><header>x</header></body></html>`,
		},
		{
			name:   "url escaped",
			markup: `<html><head></head></html>`,
			base:   `https://example.com/a?x=1&y="2"`,
			want:   `<html><head><base href="https://example.com/a?x=1&amp;y=&#34;2&#34;" /></head></html>`,
		},
		{
			name:   "empty base is a no-op",
			markup: `<html><head></head></html>`,
			base:   "",
			want:   `<html><head></head></html>`,
		},
		{
			name:   "no root left alone",
			markup: `<p>fragment</p>`,
			base:   base,
			want:   `<p>fragment</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectBaseHref(tt.markup, tt.base); got != tt.want {
				t.Errorf("InjectBaseHref()\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "file:///tmp/letters/", wantErr: false},
		{raw: "https://static.example.com/letters/", wantErr: false},
		{raw: "", wantErr: true},
		{raw: "letters/", wantErr: true},
		{raw: "/tmp/letters", wantErr: true},
		{raw: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		u, err := ValidateBaseURL(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidBaseURL) {
				t.Errorf("ValidateBaseURL(%q) error = %v, want ErrInvalidBaseURL", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateBaseURL(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if u.String() != tt.raw {
			t.Errorf("ValidateBaseURL(%q) = %q", tt.raw, u.String())
		}
	}
}

func TestBaseURLFromDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	got, err := BaseURLFromDir(dir)
	if err != nil {
		t.Fatalf("BaseURLFromDir() unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "file:///") {
		t.Errorf("BaseURLFromDir() = %q, want file:/// prefix", got)
	}
	if !strings.HasSuffix(got, "/") {
		t.Errorf("BaseURLFromDir() = %q, want trailing slash", got)
	}
	if !strings.Contains(got, filepath.ToSlash(filepath.Base(dir))) {
		t.Errorf("BaseURLFromDir() = %q does not name %q", got, dir)
	}
	if _, err := ValidateBaseURL(got); err != nil {
		t.Errorf("BaseURLFromDir() result does not validate: %v", err)
	}
}

func TestPathToFileURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "/tmp/out", want: "file:///tmp/out"},
		{path: "/tmp/with space", want: "file:///tmp/with%20space"},
	}

	for _, tt := range tests {
		if got := PathToFileURL(tt.path); got != tt.want {
			t.Errorf("PathToFileURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
