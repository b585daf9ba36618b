package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// templateFlags selects the template and its store.
type templateFlags struct {
	name string
	dir  string
	mode string
}

// qrFlags holds QR image flags.
type qrFlags struct {
	payload string
	size    int
	image   string
	logo    string
	level   string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// rendererFlags holds browser engine flags.
type rendererFlags struct {
	engine     string
	timeout    string
	browserBin string
	noSandbox  bool
	remoteURL  string
	workers    int
}

// logFlags holds diagnostics logging flags.
type logFlags struct {
	level string
	file  string
	json  bool
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common   commonFlags
	output   string
	baseDir  string
	date     string
	vars     map[string]string
	dump     bool
	template templateFlags
	qr       qrFlags
	page     pageFlags
	renderer rendererFlags
	log      logFlags

	// set reports whether a flag was given explicitly; numeric and boolean
	// flags have meaningful zero values.
	set *flag.FlagSet
}

// changed reports whether the named flag was set on the command line.
func (f *generateFlags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show steps and timing")
}

// addTemplateFlags adds template flags to a FlagSet.
func addTemplateFlags(fs *flag.FlagSet, f *templateFlags) {
	fs.StringVarP(&f.name, "template", "t", "", "template name")
	fs.StringVar(&f.dir, "template-dir", "", "directory searched before the built-in templates")
	fs.StringVar(&f.mode, "template-mode", "", "template engine: html, text")
}

// addQRFlags adds QR image flags to a FlagSet.
func addQRFlags(fs *flag.FlagSet, f *qrFlags) {
	fs.StringVar(&f.payload, "qr-payload", "", "text encoded in the QR image")
	fs.IntVar(&f.size, "qr-size", 0, "QR image width and height in pixels")
	fs.StringVar(&f.image, "qr-image", "", "QR PNG path")
	fs.StringVar(&f.logo, "qr-logo", "", "logo drawn at the QR center")
	fs.StringVar(&f.level, "qr-level", "", "error correction: low, medium, quartile, high")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addRendererFlags adds browser engine flags to a FlagSet.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVar(&f.engine, "engine", "", "browser driver: rod, chromedp")
	fs.StringVar(&f.timeout, "timeout", "", "render timeout per letter, e.g. 30s, 2m")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome or Chromium binary")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fs.StringVar(&f.remoteURL, "remote-url", "", "DevTools websocket of a running browser (chromedp)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers for batches (0 = auto)")
}

// addLogFlags adds logging flags to a FlagSet.
func addLogFlags(fs *flag.FlagSet, f *logFlags) {
	fs.StringVar(&f.level, "log-level", "", "log level: debug, info, warn, error, off")
	fs.StringVar(&f.file, "log-file", "", "write JSON logs to a rotating file")
	fs.BoolVar(&f.json, "log-json", false, "log JSON lines on stderr")
}

// newGenerateFlagSet registers every generate flag. Parsing and shell
// completion share it.
func newGenerateFlagSet() (*flag.FlagSet, *generateFlags) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	f := &generateFlags{set: fs}
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "PDF output path")
	fs.StringVar(&f.baseDir, "base-dir", "", "directory relative template references resolve against")
	fs.StringVar(&f.date, "date", "", "date: \"auto\", \"auto:FORMAT\", or literal")
	fs.StringToStringVarP(&f.vars, "set", "s", nil, "template variable key=value (repeatable)")
	fs.BoolVar(&f.dump, "print-config", false, "print the merged configuration as YAML and exit")
	addTemplateFlags(fs, &f.template)
	addQRFlags(fs, &f.qr)
	addPageFlags(fs, &f.page)
	addRendererFlags(fs, &f.renderer)
	addLogFlags(fs, &f.log)
	return fs, f
}

// newTemplatesFlagSet registers the templates command flags.
func newTemplatesFlagSet() (*flag.FlagSet, *generateFlags) {
	fs := flag.NewFlagSet("templates", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &generateFlags{set: fs}
	addCommonFlags(fs, &f.common)
	fs.StringVar(&f.template.dir, "template-dir", "", "directory searched before the built-in templates")
	return fs, f
}

// newDoctorFlagSet registers the doctor command flags.
func newDoctorFlagSet() (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOutput := fs.Bool("json", false, "machine-readable output")
	return fs, jsonOutput
}

// parseGenerateFlags parses flags for the generate command.
func parseGenerateFlags(args []string, stderr io.Writer) (*generateFlags, []string, error) {
	fs, f := newGenerateFlagSet()
	fs.Usage = func() { printGenerateUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
