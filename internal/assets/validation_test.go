package assets

import (
	"errors"
	"testing"
)

func TestValidateTemplateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "template"},
		{name: "with dash", input: "welcome-letter"},
		{name: "nested", input: "letters/welcome"},
		{name: "dotted file name", input: "letter.v2"},
		{name: "empty", input: "", wantErr: true},
		{name: "parent traversal", input: "../secret", wantErr: true},
		{name: "nested traversal", input: "letters/../../secret", wantErr: true},
		{name: "current dir segment", input: "./template", wantErr: true},
		{name: "absolute", input: "/etc/passwd", wantErr: true},
		{name: "windows drive", input: "C:template", wantErr: true},
		{name: "backslash", input: `letters\welcome`, wantErr: true},
		{name: "double slash", input: "letters//welcome", wantErr: true},
		{name: "trailing slash", input: "letters/", wantErr: true},
		{name: "nul byte", input: "tem\x00plate", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateTemplateName(tt.input)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("ValidateTemplateName(%q) unexpected error: %v", tt.input, err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidTemplateName) {
				t.Errorf("ValidateTemplateName(%q) error = %v, want ErrInvalidTemplateName", tt.input, err)
			}
			if !errors.Is(err, ErrTemplateNotFound) {
				t.Errorf("ValidateTemplateName(%q) error should also match ErrTemplateNotFound", tt.input)
			}
			if IsNotFound(err) {
				t.Errorf("IsNotFound(%v) = true, want false for invalid names", err)
			}
		})
	}
}
