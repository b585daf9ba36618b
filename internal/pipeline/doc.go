// Package pipeline implements the markup stages of letter generation.
//
// The stages run in order:
//   - template rendering (html/template or text/template over a TemplateStore)
//   - Markdown fragments inside templates via Goldmark
//   - HTML to XHTML normalization (permissive parse, strict serialization)
//   - <base href> injection so relative references resolve at render time
//
// QR images and PDF rendering live elsewhere: the QR generator in
// internal/qrcode and headless Chrome in the root letterpdf package. This
// package only deals with markup strings.
package pipeline
