// Package textenc decodes template and markup bytes from a named character
// encoding into UTF-8.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when no label is given.
const DefaultEncoding = "UTF-8"

var (
	// ErrUnsupportedEncoding indicates a label unknown to the WHATWG index.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	// ErrDecode indicates bytes that do not decode under the encoding.
	ErrDecode = errors.New("undecodable input")
)

// Lookup resolves an encoding label such as "utf-8", "latin1" or
// "windows-1252". An empty label means UTF-8.
func Lookup(label string) (encoding.Encoding, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label)
	}
	return enc, nil
}

// Decode converts data from the encoding named by label to a UTF-8 string.
// A leading byte order mark is dropped. Invalid UTF-8 under a UTF-8 label is
// ErrDecode rather than being replaced with U+FFFD.
func Decode(data []byte, label string) (string, error) {
	enc, err := Lookup(label)
	if err != nil {
		return "", err
	}

	if isUTF8(enc) {
		data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrDecode, invalidOffset(data))
		}
		return string(data), nil
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(out), nil
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8 || enc == encoding.Nop
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
