package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/config"
	"github.com/alnah/go-letterpdf/internal/logging"
)

// Exit codes for the letterpdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Letters generated
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, job or template
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser, markup or layout errors
)

// exitCodeFor returns the exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser and rendering errors (exit 4)
	if errors.Is(err, letterpdf.ErrBrowserConnect) ||
		errors.Is(err, letterpdf.ErrPageCreate) ||
		errors.Is(err, letterpdf.ErrPageLoad) ||
		errors.Is(err, letterpdf.ErrParse) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.Is(err, letterpdf.ErrLayout) && !isPageSettingsError(err)) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, letterpdf.ErrIO) ||
		errors.Is(err, ErrWriteLetter) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, letterpdf.ErrInvalidJob) ||
		errors.Is(err, letterpdf.ErrInvalidEngine) ||
		errors.Is(err, letterpdf.ErrInvalidBaseURL) ||
		errors.Is(err, letterpdf.ErrTemplateNotFound) ||
		errors.Is(err, letterpdf.ErrTemplateSyntax) ||
		errors.Is(err, letterpdf.ErrTemplateRender) ||
		errors.Is(err, letterpdf.ErrEncoding) ||
		isPageSettingsError(err) {
		return ExitUsage
	}

	return ExitGeneral
}

// isPageSettingsError reports layout errors caused by invalid page settings
// rather than by Chrome.
func isPageSettingsError(err error) bool {
	return errors.Is(err, letterpdf.ErrInvalidPageSize) ||
		errors.Is(err, letterpdf.ErrInvalidOrientation) ||
		errors.Is(err, letterpdf.ErrInvalidMargin)
}
