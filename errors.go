package letterpdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-letterpdf/internal/assets"
	"github.com/alnah/go-letterpdf/internal/dateutil"
	"github.com/alnah/go-letterpdf/internal/fileutil"
	"github.com/alnah/go-letterpdf/internal/pipeline"
	"github.com/alnah/go-letterpdf/internal/qrcode"
	"github.com/alnah/go-letterpdf/internal/textenc"
)

// Sentinel errors for library operations.
var (
	ErrEncoding         = errors.New("encoding error")
	ErrIO               = errors.New("I/O error")
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateSyntax   = errors.New("template syntax error")
	ErrTemplateRender   = errors.New("template rendering failed")
	ErrParse            = errors.New("markup is not well-formed")
	ErrLayout           = errors.New("layout failed")
	ErrInvalidBaseURL   = errors.New("invalid base URL")
	ErrInvalidJob       = errors.New("invalid job")
	ErrInvalidEngine    = errors.New("invalid rendering engine")

	// ErrEmptyMarkup also matches ErrParse.
	ErrEmptyMarkup = fmt.Errorf("%w: markup is empty", ErrParse)
	// ErrInvalidQRSize also matches ErrEncoding.
	ErrInvalidQRSize = fmt.Errorf("%w: invalid QR size", ErrEncoding)

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Page settings validation errors. All match ErrLayout.
	ErrInvalidPageSize    = fmt.Errorf("%w: invalid page size", ErrLayout)
	ErrInvalidOrientation = fmt.Errorf("%w: invalid orientation", ErrLayout)
	ErrInvalidMargin      = fmt.Errorf("%w: invalid margin", ErrLayout)
)

// convertError maps errors from internal packages to public sentinels.
// Context errors and errors that already carry a public sentinel pass
// through unchanged.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case isPublic(err):
		return err

	// Templates
	case errors.Is(err, assets.ErrTemplateNotFound):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, pipeline.ErrTemplateSyntax):
		return wrapError(ErrTemplateSyntax, err)
	case errors.Is(err, pipeline.ErrTemplateRender):
		return wrapError(ErrTemplateRender, err)
	case errors.Is(err, pipeline.ErrInvalidMode):
		return wrapError(ErrInvalidJob, err)
	case errors.Is(err, assets.ErrTemplateRead),
		errors.Is(err, assets.ErrInvalidBasePath),
		errors.Is(err, assets.ErrPathTraversal),
		errors.Is(err, assets.ErrInvalidS3Config):
		return wrapError(ErrIO, err)

	// Encoding
	case errors.Is(err, textenc.ErrUnsupportedEncoding), errors.Is(err, textenc.ErrDecode):
		return wrapError(ErrEncoding, err)

	// QR
	case errors.Is(err, qrcode.ErrInvalidSize):
		return wrapError(ErrInvalidQRSize, err)
	case errors.Is(err, qrcode.ErrEmptyPayload),
		errors.Is(err, qrcode.ErrEncode),
		errors.Is(err, qrcode.ErrInvalidLevel),
		errors.Is(err, qrcode.ErrLogoDecode):
		return wrapError(ErrEncoding, err)
	case errors.Is(err, qrcode.ErrLogoRead), errors.Is(err, qrcode.ErrWrite):
		return wrapError(ErrIO, err)

	// Markup and files
	case errors.Is(err, pipeline.ErrInvalidBaseURL):
		return wrapError(ErrInvalidBaseURL, err)
	case errors.Is(err, dateutil.ErrInvalidDateFormat):
		return wrapError(ErrInvalidJob, err)
	case errors.Is(err, fileutil.ErrEmptyPath),
		errors.Is(err, fileutil.ErrExtensionEmpty),
		errors.Is(err, fileutil.ErrExtensionPathTraversal):
		return wrapError(ErrIO, err)
	default:
		return err
	}
}

var publicSentinels = []error{
	ErrEncoding, ErrIO, ErrTemplateNotFound, ErrTemplateSyntax, ErrTemplateRender,
	ErrParse, ErrLayout, ErrInvalidBaseURL, ErrInvalidJob, ErrInvalidEngine,
	ErrBrowserConnect, ErrPageCreate, ErrPageLoad,
}

func isPublic(err error) bool {
	for _, s := range publicSentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// wrapError creates a new error that wraps the original with a public sentinel.
// The resulting error keeps the original message and matches the sentinel
// with errors.Is.
func wrapError(sentinel, original error) error {
	return &publicError{sentinel: sentinel, original: original}
}

type publicError struct {
	sentinel error
	original error
}

func (e *publicError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel. Internal errors are not exposed since
// they live in internal/ packages.
func (e *publicError) Unwrap() error {
	return e.sentinel
}
