package main

// Notes:
// - exitCodeFor: we test sentinel errors from letterpdf, config and logging,
//   plus wrapped errors to verify the errors.Is() chain.
// - Page settings errors match ErrLayout but are usage errors, not browser ones.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/config"
	"github.com/alnah/go-letterpdf/internal/logging"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", letterpdf.ErrBrowserConnect, ExitBrowser},
		{"page create", letterpdf.ErrPageCreate, ExitBrowser},
		{"page load", letterpdf.ErrPageLoad, ExitBrowser},
		{"parse", letterpdf.ErrParse, ExitBrowser},
		{"empty markup", letterpdf.ErrEmptyMarkup, ExitBrowser},
		{"layout", letterpdf.ErrLayout, ExitBrowser},
		{"deadline", context.DeadlineExceeded, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("failed: %w", letterpdf.ErrBrowserConnect), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"library io", letterpdf.ErrIO, ExitIO},
		{"write letter", ErrWriteLetter, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"invalid log level", logging.ErrInvalidLevel, ExitUsage},
		{"usage", ErrUsage, ExitUsage},
		{"invalid job", letterpdf.ErrInvalidJob, ExitUsage},
		{"invalid engine", letterpdf.ErrInvalidEngine, ExitUsage},
		{"invalid base url", letterpdf.ErrInvalidBaseURL, ExitUsage},
		{"template not found", letterpdf.ErrTemplateNotFound, ExitUsage},
		{"template syntax", letterpdf.ErrTemplateSyntax, ExitUsage},
		{"template render", letterpdf.ErrTemplateRender, ExitUsage},
		{"encoding", letterpdf.ErrEncoding, ExitUsage},
		{"invalid qr size", letterpdf.ErrInvalidQRSize, ExitUsage},
		{"invalid page size", letterpdf.ErrInvalidPageSize, ExitUsage},
		{"invalid orientation", letterpdf.ErrInvalidOrientation, ExitUsage},
		{"invalid margin", letterpdf.ErrInvalidMargin, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"canceled", context.Canceled, ExitGeneral},
		{"wrapped unknown", fmt.Errorf("context: %w", errors.New("unknown")), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeFor_BatchError(t *testing.T) {
	t.Parallel()

	err := &batchError{failed: 1, total: 3, first: fmt.Errorf("%w: x", letterpdf.ErrIO)}
	if got := exitCodeFor(err); got != ExitIO {
		t.Errorf("exitCodeFor(batchError) = %d, want %d", got, ExitIO)
	}
}

func TestExitCodes_Conventions(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("exit codes 0, 1, 2 must follow Unix conventions")
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("custom exit code %d collides with shell-reserved codes", code)
		}
	}
}
