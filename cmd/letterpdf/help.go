package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Generate letters as PDF (default)")
	fmt.Fprintln(w, "  templates  List available templates")
	fmt.Fprintln(w, "  doctor     Check the system for rendering")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'letterpdf help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf [generate] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a letter template with a QR image to PDF.")
	fmt.Fprintln(w, "Without flags, writes pdfs/zerobase-qr.pdf from the built-in template.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -o, --output <path>       PDF output path")
	fmt.Fprintln(w, "      --base-dir <dir>      Directory relative references resolve against")
	fmt.Fprintln(w, "      --date <s>            Date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "  -s, --set <key=value>     Template variable (repeatable)")
	fmt.Fprintln(w, "      --print-config        Print the merged configuration and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Template:")
	fmt.Fprintln(w, "  -t, --template <name>     Template name (default: template)")
	fmt.Fprintln(w, "      --template-dir <dir>  Directory searched before built-in templates")
	fmt.Fprintln(w, "      --template-mode <s>   Engine: html (escaping), text")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "QR image:")
	fmt.Fprintln(w, "      --qr-payload <s>      Encoded text (default: https://zerobase.io/)")
	fmt.Fprintln(w, "      --qr-size <n>         Width and height in pixels (default: 350)")
	fmt.Fprintln(w, "      --qr-image <path>     PNG path")
	fmt.Fprintln(w, "      --qr-logo <path>      Logo drawn at the center")
	fmt.Fprintln(w, "      --qr-level <s>        Error correction: low, medium, quartile, high")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Renderer:")
	fmt.Fprintln(w, "      --engine <s>          Browser driver: rod, chromedp")
	fmt.Fprintln(w, "      --timeout <d>         Render timeout per letter (default: 30s)")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome or Chromium binary")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox")
	fmt.Fprintln(w, "      --remote-url <url>    DevTools websocket of a running browser")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers for batches (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logging:")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error, off (default: warn)")
	fmt.Fprintln(w, "      --log-file <path>     Rotating JSON log file")
	fmt.Fprintln(w, "      --log-json            JSON log lines on stderr")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show steps and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  LETTERPDF_CONFIG, LETTERPDF_OUTPUT, LETTERPDF_TEMPLATE_DIR, LETTERPDF_ENGINE,")
	fmt.Fprintln(w, "  LETTERPDF_TIMEOUT, LETTERPDF_LOG_LEVEL, LETTERPDF_LOG_FILE,")
	fmt.Fprintln(w, "  LETTERPDF_BROWSER_BIN, LETTERPDF_WORKERS")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 general, 2 usage/config/template, 3 I/O, 4 browser/render")
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf templates [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the templates available to generate.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --template-dir <dir>  Directory searched before built-in templates")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, templates and the environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}

// runHelp prints help for a command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: letterpdf version")
	case "help":
		printUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
