package assets

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestEmbeddedStore_LoadTemplate(t *testing.T) {
	t.Parallel()

	store := NewEmbeddedStore()

	tests := []struct {
		name     string
		template string
		contains []string
		wantErr  error
	}{
		{
			name:     "qr letter",
			template: "template",
			contains: []string{`{{template "head" .}}`, `class="page-break"`, `{{.qrCode}}`},
		},
		{
			name:     "welcome letter",
			template: "welcome",
			contains: []string{`{{template "letterhead" .}}`, "Welcome to Zerobase"},
		},
		{name: "unknown", template: "nonexistent", wantErr: ErrTemplateNotFound},
		{name: "partial is not a template", template: "head", wantErr: ErrTemplateNotFound},
		{name: "traversal", template: "../embedded", wantErr: ErrInvalidTemplateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := store.LoadTemplate(context.Background(), tt.template)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadTemplate(%q) error = %v, want %v", tt.template, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadTemplate(%q) unexpected error: %v", tt.template, err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("LoadTemplate(%q) missing %q", tt.template, want)
				}
			}
		})
	}
}

func TestEmbeddedStore_LoadPartials(t *testing.T) {
	t.Parallel()

	partials, err := NewEmbeddedStore().LoadPartials(context.Background())
	if err != nil {
		t.Fatalf("LoadPartials() unexpected error: %v", err)
	}

	for _, name := range []string{"head", "letterhead", "footer"} {
		if strings.TrimSpace(partials[name]) == "" {
			t.Errorf("partial %q missing or empty", name)
		}
	}
	if !strings.Contains(partials["head"], "<title>") {
		t.Error("head partial should declare a title")
	}
}

func TestEmbeddedStore_ListTemplates(t *testing.T) {
	t.Parallel()

	names, err := NewEmbeddedStore().ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListTemplates() unexpected error: %v", err)
	}

	want := []string{"template", "welcome"}
	if !slices.Equal(names, want) {
		t.Errorf("ListTemplates() = %v, want %v", names, want)
	}
}
