package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-letterpdf/internal/config"
)

// envPrefix starts every variable the CLI reads.
const envPrefix = "LETTERPDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string // LETTERPDF_CONFIG: config file name or path
	Output      string // LETTERPDF_OUTPUT: PDF path
	TemplateDir string // LETTERPDF_TEMPLATE_DIR: template directory
	Engine      string // LETTERPDF_ENGINE: rod or chromedp
	Timeout     string // LETTERPDF_TIMEOUT: render timeout
	LogLevel    string // LETTERPDF_LOG_LEVEL: debug, info, warn, error, off
	LogFile     string // LETTERPDF_LOG_FILE: rotating log file
	BrowserBin  string // LETTERPDF_BROWSER_BIN: Chrome binary
	Workers     int    // LETTERPDF_WORKERS: batch parallelism
}

// knownEnvVars lists valid LETTERPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"LETTERPDF_CONFIG":       true,
	"LETTERPDF_OUTPUT":       true,
	"LETTERPDF_TEMPLATE_DIR": true,
	"LETTERPDF_ENGINE":       true,
	"LETTERPDF_TIMEOUT":      true,
	"LETTERPDF_LOG_LEVEL":    true,
	"LETTERPDF_LOG_FILE":     true,
	"LETTERPDF_BROWSER_BIN":  true,
	"LETTERPDF_WORKERS":      true,
	"LETTERPDF_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Invalid worker counts are ignored; other values are validated with the
// rest of the config.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("LETTERPDF_CONFIG"),
		Output:      os.Getenv("LETTERPDF_OUTPUT"),
		TemplateDir: os.Getenv("LETTERPDF_TEMPLATE_DIR"),
		Engine:      os.Getenv("LETTERPDF_ENGINE"),
		Timeout:     os.Getenv("LETTERPDF_TIMEOUT"),
		LogLevel:    os.Getenv("LETTERPDF_LOG_LEVEL"),
		LogFile:     os.Getenv("LETTERPDF_LOG_FILE"),
		BrowserBin:  os.Getenv("LETTERPDF_BROWSER_BIN"),
	}

	if workers := os.Getenv("LETTERPDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized LETTERPDF_*
// variable, e.g. LETTERPDF_TEMPLATES instead of LETTERPDF_TEMPLATE_DIR.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies environment values over the loaded config.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Output != "" {
		cfg.Output = env.Output
	}
	if env.TemplateDir != "" {
		cfg.Template.Dir = env.TemplateDir
		cfg.Template.S3 = nil
	}
	if env.Engine != "" {
		cfg.Renderer.Engine = env.Engine
	}
	if env.Timeout != "" {
		cfg.Renderer.Timeout = env.Timeout
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
	if env.BrowserBin != "" {
		cfg.Renderer.BrowserBin = env.BrowserBin
	}
	if env.Workers > 0 {
		cfg.Renderer.Workers = env.Workers
	}
}
