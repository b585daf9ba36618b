package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-letterpdf/internal/assets"
	"github.com/alnah/go-letterpdf/internal/dateutil"
	"github.com/alnah/go-letterpdf/internal/logging"
	"github.com/alnah/go-letterpdf/internal/pipeline"
	"github.com/alnah/go-letterpdf/internal/qrcode"
	"github.com/alnah/go-letterpdf/internal/textenc"
	"github.com/alnah/go-letterpdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Defaults match the compiled-in job of the library.
const (
	DefaultOutput      = "pdfs/zerobase-qr.pdf"
	DefaultBaseDir     = "resources"
	DefaultEncoding    = textenc.DefaultEncoding
	DefaultTemplate    = "template"
	DefaultQRPayload   = "https://zerobase.io/"
	DefaultQRSize      = 350
	DefaultQRImage     = "resources/qr/zerobase-qr.png"
	DefaultPageSize    = "letter"
	DefaultOrientation = "portrait"
	DefaultMargin      = 0.5
	DefaultEngine      = "rod"
	DefaultTimeout     = "30s"
)

// Field limits.
const (
	MaxPathLength     = 4096
	MaxURLLength      = 2048
	MaxNameLength     = 255
	MaxDateLength     = 100
	MaxQRPayload      = 2048 // bytes; QR version 40 at level H holds ~1270
	MaxQRSize         = 4096 // pixels per side
	MaxLetters        = 1000
	MaxWorkers        = 32
	MaxTimeout        = 10 * time.Minute
	MaxBucketLength   = 63 // S3 bucket naming rules
	MaxEncodingLength = 40
)

// Config holds everything needed to produce one or more letters.
type Config struct {
	Output   string         `yaml:"output"`
	BaseDir  string         `yaml:"baseDir"`
	Encoding string         `yaml:"encoding"`
	Date     string         `yaml:"date"` // "auto", "auto:LAYOUT" or a literal date
	Template TemplateConfig `yaml:"template"`
	QR       QRConfig       `yaml:"qr"`
	Page     PageConfig     `yaml:"page"`
	Renderer RendererConfig `yaml:"renderer"`
	Log      LogConfig      `yaml:"log"`
	Context  map[string]any `yaml:"context"` // template data shared by all letters
	Letters  []LetterConfig `yaml:"letters"` // batch mode; empty means one letter
}

// TemplateConfig selects the template and where it is loaded from.
type TemplateConfig struct {
	Name   string    `yaml:"name"`
	Dir    string    `yaml:"dir"`   // filesystem store root (empty = embedded)
	Suffix string    `yaml:"suffix"` // default ".html"
	Mode   string    `yaml:"mode"`  // "html" or "text"
	S3     *S3Config `yaml:"s3"`    // S3 store, exclusive with dir
}

// S3Config locates templates in an S3 bucket.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"usePathStyle"`
	Timeout      string `yaml:"timeout"`
}

// QRConfig describes the QR image embedded in the letter.
type QRConfig struct {
	Payload string `yaml:"payload"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Image   string `yaml:"image"` // written PNG path
	Logo    string `yaml:"logo"`  // optional logo composited at the center
	Level   string `yaml:"level"` // low, medium, quartile, high
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches
}

// RendererConfig selects and tunes the browser engine.
type RendererConfig struct {
	Engine     string `yaml:"engine"`  // "rod" or "chromedp"
	Timeout    string `yaml:"timeout"` // Go duration, e.g. "30s"
	BrowserBin string `yaml:"browserBin"`
	NoSandbox  bool   `yaml:"noSandbox"`
	RemoteURL  string `yaml:"remoteURL"` // chromedp only: DevTools websocket URL
	Workers    int    `yaml:"workers"`   // batch parallelism (0 = auto)
}

// LogConfig configures diagnostics logging.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
	JSON       bool   `yaml:"json"`
}

// LetterConfig is one entry of a batch. Empty fields inherit from the
// top-level config; Context is merged over the shared context.
type LetterConfig struct {
	Output   string         `yaml:"output"`
	Template string         `yaml:"template"`
	Date     string         `yaml:"date"`
	Context  map[string]any `yaml:"context"`
	QR       *QRConfig      `yaml:"qr"`
}

// DefaultConfig returns the configuration of the single default letter.
func DefaultConfig() *Config {
	return &Config{
		Output:   DefaultOutput,
		BaseDir:  DefaultBaseDir,
		Encoding: DefaultEncoding,
		Template: TemplateConfig{
			Name:   DefaultTemplate,
			Suffix: assets.DefaultSuffix,
			Mode:   string(pipeline.ModeHTML),
		},
		QR: QRConfig{
			Payload: DefaultQRPayload,
			Width:   DefaultQRSize,
			Height:  DefaultQRSize,
			Image:   DefaultQRImage,
			Level:   qrcode.DefaultLevel.String(),
		},
		Page: PageConfig{
			Size:        DefaultPageSize,
			Orientation: DefaultOrientation,
			Margin:      DefaultMargin,
		},
		Renderer: RendererConfig{
			Engine:  DefaultEngine,
			Timeout: DefaultTimeout,
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  logging.DefaultMaxSizeMB,
			MaxBackups: logging.DefaultMaxBackups,
			MaxAgeDays: logging.DefaultMaxAgeDays,
		},
	}
}

// TimeoutDuration parses Renderer.Timeout. Empty means DefaultTimeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parseTimeout("renderer.timeout", c.Renderer.Timeout)
}

// S3TimeoutDuration parses Template.S3.Timeout. Zero means the store default.
func (c *Config) S3TimeoutDuration() (time.Duration, error) {
	if c.Template.S3 == nil || c.Template.S3.Timeout == "" {
		return 0, nil
	}
	return parseTimeout("template.s3.timeout", c.Template.S3.Timeout)
}

func parseTimeout(field, s string) (time.Duration, error) {
	if s == "" {
		s = DefaultTimeout
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, invalid(field, "%q is not a duration", s)
	}
	if d <= 0 || d > MaxTimeout {
		return 0, invalid(field, "%s out of range (0, %s]", d, MaxTimeout)
	}
	return d, nil
}

// Validate checks values and lengths. Called by LoadConfig, but available
// for callers that build a Config in code.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"output", c.Output, MaxPathLength},
		{"baseDir", c.BaseDir, MaxPathLength},
		{"encoding", c.Encoding, MaxEncodingLength},
		{"date", c.Date, MaxDateLength},
		{"template.name", c.Template.Name, MaxNameLength},
		{"template.dir", c.Template.Dir, MaxPathLength},
		{"template.suffix", c.Template.Suffix, MaxNameLength},
		{"qr.payload", c.QR.Payload, MaxQRPayload},
		{"qr.image", c.QR.Image, MaxPathLength},
		{"qr.logo", c.QR.Logo, MaxPathLength},
		{"renderer.browserBin", c.Renderer.BrowserBin, MaxPathLength},
		{"renderer.remoteURL", c.Renderer.RemoteURL, MaxURLLength},
		{"log.file", c.Log.File, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if c.Encoding != "" {
		if _, err := textenc.Lookup(c.Encoding); err != nil {
			return invalid("encoding", "%v", err)
		}
	}
	if err := validateDate("date", c.Date); err != nil {
		return err
	}
	if err := c.validateTemplate(); err != nil {
		return err
	}
	if err := validateQR("qr", &c.QR); err != nil {
		return err
	}
	if err := c.validatePage(); err != nil {
		return err
	}
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "%v", err)
	}

	return c.validateLetters()
}

func (c *Config) validateTemplate() error {
	t := c.Template
	if t.Name != "" {
		if err := assets.ValidateTemplateName(t.Name); err != nil {
			return invalid("template.name", "%v", err)
		}
	}
	if t.Mode != "" {
		if _, err := pipeline.ParseMode(t.Mode); err != nil {
			return invalid("template.mode", "%v", err)
		}
	}
	if t.S3 == nil {
		return nil
	}
	if t.Dir != "" {
		return invalid("template", "dir and s3 are mutually exclusive")
	}
	if t.S3.Bucket == "" {
		return invalid("template.s3.bucket", "required")
	}
	if err := validateFieldLength("template.s3.bucket", t.S3.Bucket, MaxBucketLength); err != nil {
		return err
	}
	if err := validateFieldLength("template.s3.prefix", t.S3.Prefix, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("template.s3.endpoint", t.S3.Endpoint, MaxURLLength); err != nil {
		return err
	}
	_, err := c.S3TimeoutDuration()
	return err
}

func validateQR(prefix string, q *QRConfig) error {
	if q.Width < 0 || q.Width > MaxQRSize {
		return invalid(prefix+".width", "must be between 0 and %d, got %d", MaxQRSize, q.Width)
	}
	if q.Height < 0 || q.Height > MaxQRSize {
		return invalid(prefix+".height", "must be between 0 and %d, got %d", MaxQRSize, q.Height)
	}
	if q.Level != "" {
		if _, err := qrcode.ParseLevel(q.Level); err != nil {
			return invalid(prefix+".level", "%v", err)
		}
	}
	return nil
}

func (c *Config) validatePage() error {
	if c.Page.Size != "" {
		switch strings.ToLower(c.Page.Size) {
		case "letter", "a4", "legal":
		default:
			return invalid("page.size", "%q (must be letter, a4, or legal)", c.Page.Size)
		}
	}
	if c.Page.Orientation != "" {
		switch strings.ToLower(c.Page.Orientation) {
		case "portrait", "landscape":
		default:
			return invalid("page.orientation", "%q (must be portrait or landscape)", c.Page.Orientation)
		}
	}
	if c.Page.Margin < 0 {
		return invalid("page.margin", "must not be negative, got %.2f", c.Page.Margin)
	}
	return nil
}

func (c *Config) validateRenderer() error {
	if c.Renderer.Engine != "" {
		switch strings.ToLower(c.Renderer.Engine) {
		case "rod", "chromedp":
		default:
			return invalid("renderer.engine", "%q (must be rod or chromedp)", c.Renderer.Engine)
		}
	}
	if c.Renderer.Workers < 0 || c.Renderer.Workers > MaxWorkers {
		return invalid("renderer.workers", "must be between 0 and %d, got %d", MaxWorkers, c.Renderer.Workers)
	}
	_, err := c.TimeoutDuration()
	return err
}

func (c *Config) validateLetters() error {
	if len(c.Letters) > MaxLetters {
		return invalid("letters", "%d entries (max %d)", len(c.Letters), MaxLetters)
	}

	outputs := make(map[string]int, len(c.Letters))
	for i, l := range c.Letters {
		field := fmt.Sprintf("letters[%d]", i)
		if l.Output == "" {
			return invalid(field+".output", "required")
		}
		if err := validateFieldLength(field+".output", l.Output, MaxPathLength); err != nil {
			return err
		}
		key := filepath.Clean(l.Output)
		if prev, dup := outputs[key]; dup {
			return invalid(field+".output", "%q already used by letters[%d]", l.Output, prev)
		}
		outputs[key] = i

		if l.Template != "" {
			if err := assets.ValidateTemplateName(l.Template); err != nil {
				return invalid(field+".template", "%v", err)
			}
		}
		if err := validateDate(field+".date", l.Date); err != nil {
			return err
		}
		if l.QR != nil {
			if err := validateFieldLength(field+".qr.payload", l.QR.Payload, MaxQRPayload); err != nil {
				return err
			}
			if err := validateQR(field+".qr", l.QR); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateDate(field, value string) error {
	if err := validateFieldLength(field, value, MaxDateLength); err != nil {
		return err
	}
	if _, err := dateutil.Resolve(value, time.Time{}); err != nil {
		return invalid(field, "%v", err)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, field, fmt.Sprintf(format, args...))
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a YAML extension, it's treated
// as a file path. Otherwise it's searched in standard locations.
// Values absent from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/letterpdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "letterpdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
