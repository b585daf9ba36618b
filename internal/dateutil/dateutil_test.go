package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestToGoLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		layout  string
		want    string
		wantErr error
	}{
		{name: "full year", layout: "YYYY", want: "2006"},
		{name: "short year", layout: "YY", want: "06"},
		{name: "full month name", layout: "MMMM", want: "January"},
		{name: "short month name", layout: "MMM", want: "Jan"},
		{name: "padded month", layout: "MM", want: "01"},
		{name: "month", layout: "M", want: "1"},
		{name: "padded day", layout: "DD", want: "02"},
		{name: "day", layout: "D", want: "2"},
		{name: "weekday", layout: "dddd", want: "Monday"},
		{name: "short weekday", layout: "ddd", want: "Mon"},
		{name: "long letter layout", layout: "MMMM D, YYYY", want: "January 2, 2006"},
		{name: "iso preset", layout: "iso", want: "2006-01-02"},
		{name: "preset is case insensitive", layout: "European", want: "02/01/2006"},
		{name: "full preset", layout: "full", want: "Monday, January 2, 2006"},
		{name: "bracket escapes literal", layout: "[Due] YYYY", want: "Due 2006"},
		{name: "unknown characters preserved", layout: "YYYY.MM", want: "2006.01"},
		{name: "empty layout", layout: "", wantErr: ErrInvalidDateFormat},
		{name: "unclosed bracket", layout: "[Due YYYY", wantErr: ErrInvalidDateFormat},
		{name: "too long", layout: strings.Repeat("Y", MaxLayoutLength+1), wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToGoLayout(tt.layout)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToGoLayout(%q) error = %v, want %v", tt.layout, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToGoLayout(%q) unexpected error: %v", tt.layout, err)
			}
			if got != tt.want {
				t.Errorf("ToGoLayout(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

	got, err := Format(now, "")
	if err != nil {
		t.Fatalf("Format() unexpected error: %v", err)
	}
	if got != "March 7, 2026" {
		t.Errorf("Format() = %q, want %q", got, "March 7, 2026")
	}

	got, err = Format(now, "DD/MM/YYYY")
	if err != nil {
		t.Fatalf("Format() unexpected error: %v", err)
	}
	if got != "07/03/2026" {
		t.Errorf("Format() = %q, want %q", got, "07/03/2026")
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{name: "empty uses default", value: "", want: "March 7, 2026"},
		{name: "auto uses default", value: "auto", want: "March 7, 2026"},
		{name: "auto is case insensitive", value: "AUTO", want: "March 7, 2026"},
		{name: "auto with layout", value: "auto:YYYY-MM-DD", want: "2026-03-07"},
		{name: "auto with preset", value: "auto:us", want: "03/07/2026"},
		{name: "literal passthrough", value: "1 April 2026", want: "1 April 2026"},
		{name: "auto with empty layout", value: "auto:", wantErr: ErrInvalidDateFormat},
		{name: "auto with bad layout", value: "auto:[YYYY", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.value, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
