package letterpdf

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-letterpdf/internal/assets"
	"github.com/alnah/go-letterpdf/internal/dateutil"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// paperSizes holds portrait width and height in inches.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// dimensions returns the paper width and height in inches, swapped for
// landscape. p must be valid.
func (p *PageSettings) dimensions() (width, height float64) {
	if p == nil {
		p = DefaultPageSettings()
	}
	wh := paperSizes[strings.ToLower(p.Size)]
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		return wh[1], wh[0]
	}
	return wh[0], wh[1]
}

// margin returns the margin in inches, defaulting for nil settings.
func (p *PageSettings) margin() float64 {
	if p == nil {
		return DefaultMargin
	}
	return p.Margin
}

// QR error-correction levels.
const (
	QRLevelLow      = "low"
	QRLevelMedium   = "medium"
	QRLevelQuartile = "quartile"
	QRLevelHigh     = "high"
)

// QRSpec describes the QR image generated before the template is rendered.
type QRSpec struct {
	Payload   string // encoded text, usually a URL
	Width     int    // pixels
	Height    int    // pixels
	ImagePath string // PNG destination, overwritten on every run
	LogoPath  string // optional logo composited at the center
	Level     string // low, medium, quartile, high (empty = high)
}

// Job is everything one letter needs. Zero fields are not filled in:
// start from DefaultJob and override.
type Job struct {
	OutputPath   string         // PDF destination
	BaseDir      string         // relative references in markup resolve here
	TemplateName string         // looked up in the template store
	Context      map[string]any // template data
	QR           QRSpec
	Page         *PageSettings // nil = DefaultPageSettings
	Date         string        // "auto", "auto:LAYOUT" or a literal; exposed as .date
}

// Default job values.
const (
	DefaultOutputPath   = "pdfs/zerobase-qr.pdf"
	DefaultQRPayload    = "https://zerobase.io/"
	DefaultQRSize       = 350
	DefaultQRImagePath  = "resources/qr/zerobase-qr.png"
	DefaultBaseDir      = "resources"
	DefaultTemplateName = "template"
)

// DefaultJob returns the job that produces the Zerobase QR letter.
func DefaultJob() Job {
	return Job{
		OutputPath:   DefaultOutputPath,
		BaseDir:      DefaultBaseDir,
		TemplateName: DefaultTemplateName,
		Context:      map[string]any{},
		QR: QRSpec{
			Payload:   DefaultQRPayload,
			Width:     DefaultQRSize,
			Height:    DefaultQRSize,
			ImagePath: DefaultQRImagePath,
			Level:     QRLevelHigh,
		},
		Page: DefaultPageSettings(),
		Date: "auto",
	}
}

// Validate checks the job before any step runs.
//
// This is a trust boundary for library users who build a Job by hand. CLI
// input is validated earlier by the config package; both paths end here.
func (j *Job) Validate() error {
	if j.TemplateName == "" {
		return fmt.Errorf("%w: template name is empty", ErrInvalidJob)
	}
	if err := assets.ValidateTemplateName(j.TemplateName); err != nil {
		return convertError(err)
	}
	if j.OutputPath == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidJob)
	}
	if j.QR.ImagePath == "" {
		return fmt.Errorf("%w: QR image path is empty", ErrInvalidJob)
	}
	if _, err := dateutil.Resolve(j.Date, time.Time{}); err != nil {
		return convertError(err)
	}
	return j.Page.Validate()
}

// templateData returns the data handed to the template: a copy of Context
// plus "qrCode" (the QR image path relative to BaseDir), "qrPayload" and
// "date", unless Context already sets them.
func (j *Job) templateData(now time.Time) (map[string]any, error) {
	data := make(map[string]any, len(j.Context)+3)
	maps.Copy(data, j.Context)

	if _, ok := data["qrCode"]; !ok {
		data["qrCode"] = relativeRef(j.BaseDir, j.QR.ImagePath)
	}
	if _, ok := data["qrPayload"]; !ok {
		data["qrPayload"] = j.QR.Payload
	}
	if _, ok := data["date"]; !ok {
		date, err := dateutil.Resolve(j.Date, now)
		if err != nil {
			return nil, convertError(err)
		}
		data["date"] = date
	}
	return data, nil
}

// relativeRef returns target as a slash-separated path relative to base.
// Targets outside base are returned as absolute file paths.
func relativeRef(base, target string) string {
	if base == "" {
		base = "."
	}
	absBase, errBase := filepath.Abs(base)
	absTarget, errTarget := filepath.Abs(target)
	if errBase != nil || errTarget != nil {
		return filepath.ToSlash(target)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(absTarget)
	}
	return filepath.ToSlash(rel)
}

// Step names reported in Result.Steps.
const (
	StepQR        = "qr"
	StepTemplate  = "template"
	StepNormalize = "normalize"
	StepRender    = "render"
	StepWrite     = "write"
)

// StepResult records the outcome of one pipeline step.
type StepResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Result is the outcome of a job.
type Result struct {
	OutputPath string       // empty when the PDF was not written
	PDF        []byte       // rendered document
	Pages      int          // 0 when the page count could not be read
	QRErr      error        // QR step failure; the PDF was still produced
	Steps      []StepResult // in execution order
}
