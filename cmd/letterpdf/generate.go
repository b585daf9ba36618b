package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/config"
	"github.com/alnah/go-letterpdf/internal/logging"
	"github.com/alnah/go-letterpdf/internal/yamlutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrWriteLetter = errors.New("failed to write letter")
)

// runGenerate loads configuration, builds the jobs and generates every
// letter. The returned error carries the category of the first failure.
func runGenerate(ctx context.Context, positional []string, flags *generateFlags, env *Environment) error {
	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, positional[0])
	}

	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if flags.dump {
		return printConfig(env.Stdout, cfg)
	}

	logger, closer, err := logging.New(logConfig(cfg), env.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	opts, err := generatorOptions(cfg, store, logger, env)
	if err != nil {
		return err
	}

	jobs, err := buildJobs(cfg)
	if err != nil {
		return err
	}

	size := min(letterpdf.ResolvePoolSize(cfg.Renderer.Workers), len(jobs))
	logger.Debug().Int("letters", len(jobs)).Int("workers", size).Msg("generating")

	pool := env.NewPool(size, opts...)
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("closing browsers")
		}
	}()

	results := generateBatch(ctx, pool, jobs)
	h := hinter{ctx: ctx, engine: cfg.Renderer.Engine, store: store}
	return printResults(results, flags.common, h, env)
}

// loadConfig applies, in increasing priority, defaults, the config file,
// LETTERPDF_* variables and command-line flags, then validates the result.
func loadConfig(flags *generateFlags) (*config.Config, error) {
	envCfg := loadEnvConfig()

	path := flags.common.config
	if path == "" {
		path = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printConfig writes cfg as YAML.
func printConfig(w io.Writer, cfg *config.Config) error {
	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *generateFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.baseDir != "" {
		cfg.BaseDir = flags.baseDir
	}
	if flags.date != "" {
		cfg.Date = flags.date
	}
	if len(flags.vars) > 0 {
		if cfg.Context == nil {
			cfg.Context = make(map[string]any, len(flags.vars))
		}
		for k, v := range flags.vars {
			cfg.Context[k] = v
		}
	}

	// Template flags
	if flags.template.name != "" {
		cfg.Template.Name = flags.template.name
	}
	if flags.template.dir != "" {
		cfg.Template.Dir = flags.template.dir
		cfg.Template.S3 = nil
	}
	if flags.template.mode != "" {
		cfg.Template.Mode = flags.template.mode
	}

	// QR flags
	if flags.qr.payload != "" {
		cfg.QR.Payload = flags.qr.payload
	}
	if flags.changed("qr-size") {
		cfg.QR.Width = flags.qr.size
		cfg.QR.Height = flags.qr.size
	}
	if flags.qr.image != "" {
		cfg.QR.Image = flags.qr.image
	}
	if flags.qr.logo != "" {
		cfg.QR.Logo = flags.qr.logo
	}
	if flags.qr.level != "" {
		cfg.QR.Level = flags.qr.level
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.changed("margin") {
		cfg.Page.Margin = flags.page.margin
	}

	// Renderer flags
	if flags.renderer.engine != "" {
		cfg.Renderer.Engine = flags.renderer.engine
	}
	if flags.renderer.timeout != "" {
		cfg.Renderer.Timeout = flags.renderer.timeout
	}
	if flags.renderer.browserBin != "" {
		cfg.Renderer.BrowserBin = flags.renderer.browserBin
	}
	if flags.changed("no-sandbox") {
		cfg.Renderer.NoSandbox = flags.renderer.noSandbox
	}
	if flags.renderer.remoteURL != "" {
		cfg.Renderer.RemoteURL = flags.renderer.remoteURL
	}
	if flags.changed("workers") {
		cfg.Renderer.Workers = flags.renderer.workers
	}

	// Log flags: an explicit level beats -v and -q.
	switch {
	case flags.log.level != "":
		cfg.Log.Level = flags.log.level
	case flags.common.verbose:
		cfg.Log.Level = "debug"
	case flags.common.quiet:
		cfg.Log.Level = "error"
	}
	if flags.log.file != "" {
		cfg.Log.File = flags.log.file
	}
	if flags.changed("log-json") {
		cfg.Log.JSON = flags.log.json
	}
}

// logConfig maps the log section of cfg to the logging package.
func logConfig(cfg *config.Config) logging.Config {
	return logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		JSON:       cfg.Log.JSON,
	}
}

// buildStore returns the template store selected by cfg, or nil for the
// built-in templates.
func buildStore(ctx context.Context, cfg *config.Config) (letterpdf.TemplateStore, error) {
	opts := letterpdf.StoreOptions{Suffix: cfg.Template.Suffix, Encoding: cfg.Encoding}

	if s3 := cfg.Template.S3; s3 != nil {
		timeout, err := cfg.S3TimeoutDuration()
		if err != nil {
			return nil, err
		}
		return letterpdf.NewS3TemplateStore(ctx, letterpdf.S3Config{
			Bucket:       s3.Bucket,
			Prefix:       s3.Prefix,
			Region:       s3.Region,
			Endpoint:     s3.Endpoint,
			UsePathStyle: s3.UsePathStyle,
			Timeout:      timeout,
		}, opts)
	}

	if cfg.Template.Dir == "" {
		return nil, nil
	}
	return letterpdf.NewTemplateStore(cfg.Template.Dir, opts)
}

// generatorOptions translates cfg into generator options.
func generatorOptions(cfg *config.Config, store letterpdf.TemplateStore, logger zerolog.Logger, env *Environment) ([]letterpdf.Option, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	engine := strings.ToLower(cfg.Renderer.Engine)
	if engine == "" {
		engine = letterpdf.EngineRod
	}

	opts := []letterpdf.Option{
		letterpdf.WithEngine(engine),
		letterpdf.WithTimeout(timeout),
		letterpdf.WithLogger(logger),
		letterpdf.WithNoSandbox(cfg.Renderer.NoSandbox),
		letterpdf.WithClock(env.Now),
	}
	if cfg.Template.Mode != "" {
		opts = append(opts, letterpdf.WithTemplateMode(cfg.Template.Mode))
	}
	if store != nil {
		opts = append(opts, letterpdf.WithTemplateStore(store))
	}
	if cfg.Renderer.BrowserBin != "" {
		opts = append(opts, letterpdf.WithBrowserBin(cfg.Renderer.BrowserBin))
	}
	if cfg.Renderer.RemoteURL != "" {
		opts = append(opts, letterpdf.WithRemoteURL(cfg.Renderer.RemoteURL))
	}
	return opts, nil
}

// buildJobs returns one job per letter. Without letters, the top-level
// config describes a single letter.
func buildJobs(cfg *config.Config) ([]letterpdf.Job, error) {
	base := baseJob(cfg)
	if len(cfg.Letters) == 0 {
		if err := base.Validate(); err != nil {
			return nil, err
		}
		return []letterpdf.Job{base}, nil
	}

	jobs := make([]letterpdf.Job, 0, len(cfg.Letters))
	for i, l := range cfg.Letters {
		job := letterJob(base, i, l)
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("letters[%d]: %w", i, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// baseJob builds the job described by the top-level config.
func baseJob(cfg *config.Config) letterpdf.Job {
	job := letterpdf.DefaultJob()
	job.OutputPath = cfg.Output
	job.BaseDir = cfg.BaseDir
	job.TemplateName = cfg.Template.Name
	if cfg.Date != "" {
		job.Date = cfg.Date
	}
	job.Context = maps.Clone(cfg.Context)
	if job.Context == nil {
		job.Context = map[string]any{}
	}
	job.QR = qrSpec(job.QR, &cfg.QR)
	job.Page = &letterpdf.PageSettings{
		Size:        strings.ToLower(cfg.Page.Size),
		Orientation: strings.ToLower(cfg.Page.Orientation),
		Margin:      cfg.Page.Margin,
	}
	return job
}

// letterJob derives the job of letters[i] from base. A letter without its
// own QR image path gets a numbered one next to the base image so parallel
// letters never overwrite each other's QR file.
func letterJob(base letterpdf.Job, i int, l config.LetterConfig) letterpdf.Job {
	job := base
	job.OutputPath = l.Output
	if l.Template != "" {
		job.TemplateName = l.Template
	}
	if l.Date != "" {
		job.Date = l.Date
	}

	job.Context = make(map[string]any, len(base.Context)+len(l.Context))
	maps.Copy(job.Context, base.Context)
	maps.Copy(job.Context, l.Context)

	if l.QR != nil {
		job.QR = qrSpec(base.QR, l.QR)
	}
	if l.QR == nil || l.QR.Image == "" {
		job.QR.ImagePath = numberedPath(base.QR.ImagePath, i+1)
	}
	return job
}

// qrSpec overlays the non-zero fields of q on spec.
func qrSpec(spec letterpdf.QRSpec, q *config.QRConfig) letterpdf.QRSpec {
	if q.Payload != "" {
		spec.Payload = q.Payload
	}
	if q.Width > 0 {
		spec.Width = q.Width
	}
	if q.Height > 0 {
		spec.Height = q.Height
	}
	if q.Image != "" {
		spec.ImagePath = q.Image
	}
	if q.Logo != "" {
		spec.LogoPath = q.Logo
	}
	if q.Level != "" {
		spec.Level = strings.ToLower(q.Level)
	}
	return spec
}

// numberedPath inserts -n before the extension: qr/code.png -> qr/code-2.png.
func numberedPath(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), n, ext)
}
