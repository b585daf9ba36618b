// Package dateutil turns human date layouts such as "MMMM D, YYYY" into Go
// time layouts and resolves the "auto" date used on generated letters.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date layout.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxLayoutLength limits layout length.
const MaxLayoutLength = 64

// DefaultLayout is the letter date layout used when none is configured.
const DefaultLayout = "MMMM D, YYYY"

// layoutTokens is ordered longest first so matching is greedy.
var layoutTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts for common layouts.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     DefaultLayout,
	"full":     "dddd, MMMM D, YYYY",
}

// ToGoLayout converts a token layout (or preset name) to a Go time layout.
// Text between brackets is copied literally: "[Issued] YYYY" keeps "Issued".
func ToGoLayout(layout string) (string, error) {
	if preset, ok := Presets[strings.ToLower(layout)]; ok {
		layout = preset
	}
	if layout == "" {
		return "", fmt.Errorf("%w: layout is empty", ErrInvalidDateFormat)
	}
	if len(layout) > MaxLayoutLength {
		return "", fmt.Errorf("%w: layout exceeds %d characters", ErrInvalidDateFormat, MaxLayoutLength)
	}

	var b strings.Builder
	b.Grow(len(layout) + 8)

	for i := 0; i < len(layout); {
		if layout[i] == '[' {
			end := strings.IndexByte(layout[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(layout[i+1 : i+1+end])
			i += end + 2
			continue
		}

		n := 0
		for _, tok := range layoutTokens {
			if strings.HasPrefix(layout[i:], tok.token) {
				b.WriteString(tok.goFmt)
				n = len(tok.token)
				break
			}
		}
		if n == 0 {
			b.WriteByte(layout[i])
			n = 1
		}
		i += n
	}

	return b.String(), nil
}

// Format renders t with a token layout. An empty layout uses DefaultLayout.
func Format(t time.Time, layout string) (string, error) {
	if layout == "" {
		layout = DefaultLayout
	}
	goFmt, err := ToGoLayout(layout)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}

// Resolve expands "auto" and "auto:LAYOUT" against now. Any other value is
// returned unchanged so callers may pass a literal date.
func Resolve(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	switch {
	case lower == "" || lower == "auto":
		return Format(now, DefaultLayout)
	case strings.HasPrefix(lower, "auto:"):
		layout := value[len("auto:"):]
		if layout == "" {
			return "", fmt.Errorf("%w: layout cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		return Format(now, layout)
	default:
		return value, nil
	}
}
