package main

// Tests use t.Setenv() which prevents t.Parallel().

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alnah/go-letterpdf/internal/config"
)

func TestLoadEnvConfig(t *testing.T) {
	clearLetterEnv(t)
	t.Setenv("LETTERPDF_CONFIG", "/etc/letters.yaml")
	t.Setenv("LETTERPDF_OUTPUT", "out.pdf")
	t.Setenv("LETTERPDF_TEMPLATE_DIR", "/templates")
	t.Setenv("LETTERPDF_ENGINE", "chromedp")
	t.Setenv("LETTERPDF_TIMEOUT", "2m")
	t.Setenv("LETTERPDF_LOG_LEVEL", "debug")
	t.Setenv("LETTERPDF_LOG_FILE", "/var/log/letterpdf.log")
	t.Setenv("LETTERPDF_BROWSER_BIN", "/usr/bin/chromium")
	t.Setenv("LETTERPDF_WORKERS", "4")

	got := loadEnvConfig()

	want := &envConfig{
		ConfigPath:  "/etc/letters.yaml",
		Output:      "out.pdf",
		TemplateDir: "/templates",
		Engine:      "chromedp",
		Timeout:     "2m",
		LogLevel:    "debug",
		LogFile:     "/var/log/letterpdf.log",
		BrowserBin:  "/usr/bin/chromium",
		Workers:     4,
	}
	if *got != *want {
		t.Errorf("loadEnvConfig() = %+v, want %+v", got, want)
	}
}

func TestLoadEnvConfig_InvalidWorkers(t *testing.T) {
	for _, v := range []string{"many", "-2", "0"} {
		t.Run(v, func(t *testing.T) {
			clearLetterEnv(t)
			t.Setenv("LETTERPDF_WORKERS", v)

			if got := loadEnvConfig().Workers; got != 0 {
				t.Errorf("Workers = %d, want 0 for %q", got, v)
			}
		})
	}
}

func TestWarnUnknownEnvVars(t *testing.T) {
	clearLetterEnv(t)
	t.Setenv("LETTERPDF_TEMPLATES", "/typo")
	t.Setenv("LETTERPDF_ENGINE", "rod")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	out := buf.String()
	if !strings.Contains(out, "unknown environment variable LETTERPDF_TEMPLATES") {
		t.Errorf("output = %q, want warning for LETTERPDF_TEMPLATES", out)
	}
	if strings.Contains(out, "LETTERPDF_ENGINE") {
		t.Errorf("output = %q, known variables must not warn", out)
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides config values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output = "from-file.pdf"
		cfg.Template.S3 = &config.S3Config{Bucket: "letters"}

		applyEnvConfig(&envConfig{
			Output:      "from-env.pdf",
			TemplateDir: "/templates",
			Engine:      "chromedp",
			Timeout:     "45s",
			LogLevel:    "info",
			LogFile:     "app.log",
			BrowserBin:  "/opt/chrome",
			Workers:     2,
		}, cfg)

		if cfg.Output != "from-env.pdf" {
			t.Errorf("Output = %q, want from-env.pdf", cfg.Output)
		}
		if cfg.Template.Dir != "/templates" || cfg.Template.S3 != nil {
			t.Errorf("Template = %+v, want dir set and S3 cleared", cfg.Template)
		}
		if cfg.Renderer.Engine != "chromedp" || cfg.Renderer.Timeout != "45s" || cfg.Renderer.BrowserBin != "/opt/chrome" || cfg.Renderer.Workers != 2 {
			t.Errorf("Renderer = %+v", cfg.Renderer)
		}
		if cfg.Log.Level != "info" || cfg.Log.File != "app.log" {
			t.Errorf("Log = %+v", cfg.Log)
		}
	})

	t.Run("empty env keeps config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output = "from-file.pdf"
		cfg.Template.S3 = &config.S3Config{Bucket: "letters"}

		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Output != "from-file.pdf" {
			t.Errorf("Output = %q, want from-file.pdf", cfg.Output)
		}
		if cfg.Template.S3 == nil {
			t.Error("Template.S3 should be kept")
		}
		if cfg.Renderer.Engine != config.DefaultEngine {
			t.Errorf("Engine = %q, want %q", cfg.Renderer.Engine, config.DefaultEngine)
		}
	})
}
