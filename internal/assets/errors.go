package assets

import "errors"

// Sentinel errors for template stores.
var (
	// ErrTemplateNotFound indicates no template resolves for the name.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplateName indicates a name that can never resolve, such
	// as an absolute path or one with ".." segments. Errors carrying it also
	// match ErrTemplateNotFound.
	ErrInvalidTemplateName = errors.New("invalid template name")

	// ErrInvalidBasePath indicates the store root is not a readable directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrTemplateRead indicates an I/O or transport error while reading.
	ErrTemplateRead = errors.New("failed to read template")

	// ErrPathTraversal indicates a resolved path outside the store root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrInvalidS3Config indicates a missing bucket or client.
	ErrInvalidS3Config = errors.New("invalid S3 configuration")
)

// IsNotFound reports whether err means the template does not exist in a
// store, as opposed to an invalid name or a read failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) && !errors.Is(err, ErrInvalidTemplateName)
}
