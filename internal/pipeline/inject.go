package pipeline

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrInvalidBaseURL indicates a base URL that is not absolute.
var ErrInvalidBaseURL = errors.New("invalid base URL")

// InjectBaseHref inserts <base href="baseURL" /> as the first child of
// <head> so relative references resolve against baseURL. Markup that
// already declares a <base> is returned unchanged. Without a <head>, one is
// created right after the root start tag.
func InjectBaseHref(markup, baseURL string) string {
	if baseURL == "" {
		return markup
	}

	tag := `<base href="` + html.EscapeString(baseURL) + `" />`

	if idx := strings.Index(markup, "<head"); idx != -1 && isTagBoundary(markup, idx+len("<head")) {
		closeIdx := strings.Index(markup[idx:], ">")
		if closeIdx == -1 {
			return markup
		}
		insertPos := idx + closeIdx + 1
		headEnd := strings.Index(markup[insertPos:], "</head>")
		if headEnd != -1 && strings.Contains(markup[insertPos:insertPos+headEnd], "<base") {
			return markup
		}
		if markup[insertPos-2] == '/' {
			// <head/> has no content: expand it.
			return markup[:insertPos-2] + ">" + tag + "</head>" + markup[insertPos:]
		}
		return markup[:insertPos] + tag + markup[insertPos:]
	}

	if idx := strings.Index(markup, "<html"); idx != -1 && isTagBoundary(markup, idx+len("<html")) {
		closeIdx := strings.Index(markup[idx:], ">")
		if closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return markup[:insertPos] + "<head>" + tag + "</head>" + markup[insertPos:]
		}
	}

	return markup
}

// isTagBoundary reports whether the tag name ends at i.
func isTagBoundary(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	switch s[i] {
	case '>', ' ', '\t', '\n', '\r', '/':
		return true
	}
	return false
}

// ValidateBaseURL checks that raw is an absolute URL.
func ValidateBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, raw)
	}
	return u, nil
}

// BaseURLFromDir returns the file:// URL of dir with a trailing slash, so
// that "qr/code.png" resolves inside dir.
func BaseURLFromDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	u := PathToFileURL(abs)
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u, nil
}

// PathToFileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths.
func PathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		// C:/dir → /C:/dir
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
