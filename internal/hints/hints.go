// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-letterpdf/internal/fileutil"
)

// IsInContainer reports whether the process runs inside a container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether a CI environment is detected.
func InCI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for browser start failures.
func ForBrowserConnect(engine string) string {
	var hints []string

	if (InCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use a custom Chrome")
	}
	if engine != "chromedp" {
		hints = append(hints, "or try --engine chromedp")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the render timeout.
func ForTimeout() string {
	return format("for heavy templates, raise --timeout")
}

// ForConfigNotFound returns hints for a missing config file.
func ForConfigNotFound(path string) string {
	return format("check the --config path " + path + " or unset LETTERPDF_CONFIG")
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory() string {
	return format("check the output directory is writable")
}

// ForTemplateNotFound lists the templates that do resolve.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return format("check --template-dir and the template suffix")
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForQRImage returns hints for a QR image that could not be produced.
func ForQRImage() string {
	return format("the letter was rendered with a broken QR image; check --qr-image and --qr-payload")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
