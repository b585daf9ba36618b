// Package assets loads letter templates and their shared partials.
//
// # Store Architecture
//
//	TemplateStore (interface)
//	    │
//	    ├── EmbeddedStore    - templates compiled into the binary
//	    ├── FilesystemStore  - {root}/{name}{suffix} on disk
//	    ├── S3Store          - s3://bucket/prefix/{name}{suffix}
//	    └── Resolver         - custom store first, embedded fallback
//
// EmbeddedStore ships the two-page QR letter ("template") and the one-page
// "welcome" letter, plus the partials "head", "letterhead" and "footer".
//
// Resolver is what the generator uses. It tries the custom store first and
// falls back to EmbeddedStore only when the template is not found, so a
// custom directory may override a single template or partial.
//
// # Layout
//
//	{root}/
//	├── {name}{suffix}            # letter templates, e.g. template.html
//	└── partials/
//	    └── {partial}{suffix}     # shared fragments, e.g. letterhead.html
//
// Template names may contain "/" to address subdirectories. Absolute names,
// backslashes and "." or ".." segments are rejected. FilesystemStore also
// resolves symlinks and verifies the result stays under root.
package assets
