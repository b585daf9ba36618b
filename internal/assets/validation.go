package assets

import (
	"fmt"
	"strings"
)

// ValidateTemplateName checks that name is a relative, slash-separated path
// without "." or ".." segments.
func ValidateTemplateName(name string) error {
	if name == "" {
		return invalidName(name, "empty name")
	}
	if strings.ContainsAny(name, "\\\x00") {
		return invalidName(name, "contains backslash or NUL")
	}
	if strings.HasPrefix(name, "/") || (len(name) > 1 && name[1] == ':') {
		return invalidName(name, "absolute path")
	}
	for _, seg := range strings.Split(name, "/") {
		switch seg {
		case "":
			return invalidName(name, "empty path segment")
		case ".", "..":
			return invalidName(name, "relative path segment")
		}
	}
	return nil
}

func invalidName(name, reason string) error {
	return fmt.Errorf("%w: %w: %q: %s", ErrTemplateNotFound, ErrInvalidTemplateName, name, reason)
}
