package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-letterpdf"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

var shells = []Shell{ShellBash, ShellZsh, ShellFish, ShellPowerShell}

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// takesValue reports whether the flag consumes the next word.
func (f flagDef) takesValue() bool {
	return f.Type != flagBool
}

// names returns the long form followed by the short form, if any.
func (f flagDef) names() []string {
	names := []string{"--" + f.Long}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  []string // values for the first positional argument
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values     []string        // enum values
	ValuesFunc func() []string // enum values computed on demand
	FileGlob   string          // file glob pattern
	IsDir      bool            // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"engine":        {Values: []string{"rod", "chromedp"}},
	"page-size":     {Values: []string{"letter", "a4", "legal"}},
	"orientation":   {Values: []string{"portrait", "landscape"}},
	"qr-level":      {Values: []string{"low", "medium", "quartile", "high"}},
	"template-mode": {Values: []string{"html", "text"}},
	"log-level":     {Values: []string{"debug", "info", "warn", "error", "off"}},
	"template":      {ValuesFunc: builtinTemplates},

	// File flags with glob patterns
	"config":   {FileGlob: "*.yaml,*.yml"},
	"output":   {FileGlob: "*.pdf"},
	"qr-image": {FileGlob: "*.png"},
	"qr-logo":  {FileGlob: "*.png,*.jpg,*.jpeg"},
	"log-file": {FileGlob: "*.log"},

	// Directory flags
	"base-dir":     {IsDir: true},
	"template-dir": {IsDir: true},
}

// builtinTemplates lists the embedded template names.
func builtinTemplates() []string {
	names, err := letterpdf.ListTemplates(context.Background(), nil)
	if err != nil {
		return nil
	}
	return names
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			values := meta.Values
			if meta.ValuesFunc != nil {
				values = meta.ValuesFunc()
			}
			switch {
			case len(values) > 0:
				fd.Type = flagEnum
				fd.Values = values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the FlagSets the commands parse with.
func getCommands() []commandDef {
	generateFS, _ := newGenerateFlagSet()
	templatesFS, _ := newTemplatesFlagSet()
	doctorFS, _ := newDoctorFlagSet()

	cmds := []commandDef{
		{Name: "generate", Desc: "Generate letters as PDF", Flags: extractFlagsFromFlagSet(generateFS)},
		{Name: "templates", Desc: "List available templates", Flags: extractFlagsFromFlagSet(templatesFS)},
		{Name: "doctor", Desc: "Check the system for rendering", Flags: extractFlagsFromFlagSet(doctorFS)},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script"},
	}

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	for i := range cmds {
		switch cmds[i].Name {
		case "help":
			cmds[i].Args = names
		case "completion":
			for _, s := range shells {
				cmds[i].Args = append(cmds[i].Args, string(s))
			}
		}
	}
	return cmds
}

// valueFlags returns every value-taking flag across commands, once per
// long name, sorted.
func valueFlags(cmds []commandDef) []flagDef {
	seen := make(map[string]flagDef)
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.takesValue() {
				seen[f.Long] = f
			}
		}
	}
	out := make([]flagDef, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Long < out[j].Long })
	return out
}

// globs splits a FileGlob list.
func globs(pattern string) []string {
	return strings.Split(pattern, ",")
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}

	b.WriteString("# bash completion for letterpdf\n\n")
	b.WriteString("_letterpdf_completions() {\n")
	b.WriteString("    local cur prev cmd i\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"\"\n")
	b.WriteString("    for ((i = 1; i < COMP_CWORD; i++)); do\n")
	b.WriteString("        case \"${COMP_WORDS[i]}\" in\n")
	fmt.Fprintf(&b, "            %s)\n", strings.Join(names, "|"))
	b.WriteString("                cmd=\"${COMP_WORDS[i]}\"\n")
	b.WriteString("                break\n")
	b.WriteString("                ;;\n")
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")

	b.WriteString("    case \"$prev\" in\n")
	for _, f := range valueFlags(cmds) {
		fmt.Fprintf(&b, "        %s)\n", strings.Join(f.names(), "|"))
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(f.Values, " "))
		case flagFile:
			b.WriteString("            compopt -o filenames 2>/dev/null\n")
			b.WriteString("            COMPREPLY=(")
			for _, g := range globs(f.FileGlob) {
				fmt.Fprintf(&b, "$(compgen -f -X '!%s' -- \"$cur\") ", g)
			}
			b.WriteString("$(compgen -d -- \"$cur\"))\n")
		case flagDir:
			b.WriteString("            compopt -o filenames 2>/dev/null\n")
			b.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\"))\n")
		default:
			b.WriteString("            COMPREPLY=()\n")
		}
		b.WriteString("            return\n")
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		words := append([]string{}, c.Args...)
		for _, f := range c.Flags {
			words = append(words, f.names()...)
		}
		if c.Name == "generate" {
			// generate is the default command.
			b.WriteString("        \"\")\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n",
				strings.Join(append(append([]string{}, names...), words...), " "))
			b.WriteString("            ;;\n")
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(words, " "))
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _letterpdf_completions letterpdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

// zshQuote escapes s for a single-quoted _arguments spec.
func zshQuote(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`)
	return r.Replace(s)
}

// zshGlob joins "*.a,*.b" into "*.(a|b)".
func zshGlob(pattern string) string {
	parts := globs(pattern)
	if len(parts) == 1 {
		return parts[0]
	}
	exts := make([]string, len(parts))
	for i, p := range parts {
		exts[i] = strings.TrimPrefix(p, "*.")
	}
	return "*.(" + strings.Join(exts, "|") + ")"
}

// zshFlagSpec renders one _arguments spec.
func zshFlagSpec(f flagDef) string {
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = ":value:(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		action = ":file:_files -g \"" + zshGlob(f.FileGlob) + "\""
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":value: "
	}
	desc := "[" + zshQuote(f.Desc) + "]" + zshQuote(action)
	if f.Short == "" {
		return fmt.Sprintf("'--%s%s'", f.Long, desc)
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s'", f.Short, f.Long, f.Short, f.Long, desc)
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef letterpdf\n\n")
	b.WriteString("_letterpdf() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshQuote(c.Desc))
	}
	b.WriteString("    )\n\n")

	b.WriteString("    if (( CURRENT == 2 )) && [[ $words[2] != -* ]]; then\n")
	b.WriteString("        _describe -t commands 'letterpdf command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case $words[2] in\n")
	var generate commandDef
	for _, c := range cmds {
		if c.Name == "generate" {
			generate = c
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		b.WriteString("            shift words\n")
		b.WriteString("            (( CURRENT-- ))\n")
		writeZshArguments(&b, c)
		b.WriteString("            ;;\n")
	}
	// generate is the default command.
	b.WriteString("        *)\n")
	b.WriteString("            if [[ $words[2] == generate ]]; then\n")
	b.WriteString("                shift words\n")
	b.WriteString("                (( CURRENT-- ))\n")
	b.WriteString("            fi\n")
	writeZshArguments(&b, generate)
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _letterpdf letterpdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeZshArguments(b *strings.Builder, c commandDef) {
	if len(c.Flags) == 0 && len(c.Args) == 0 {
		b.WriteString("            _message 'no arguments'\n")
		return
	}
	b.WriteString("            _arguments -s")
	for _, f := range c.Flags {
		fmt.Fprintf(b, " \\\n                %s", zshFlagSpec(f))
	}
	if len(c.Args) > 0 {
		fmt.Fprintf(b, " \\\n                '1:argument:(%s)'", strings.Join(c.Args, " "))
	}
	b.WriteString("\n")
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

// fishQuote escapes s for a single-quoted fish string.
func fishQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "'", `\'`)
	return r.Replace(s)
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for letterpdf\n\n")
	b.WriteString("function __fish_letterpdf_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_letterpdf_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test \"$cmd[2]\" = \"$argv[1]\"\n")
	b.WriteString("end\n\n")
	// Flags without a command belong to generate.
	b.WriteString("function __fish_letterpdf_generating\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1; or test \"$cmd[2]\" = generate; or string match -q -- '-*' \"$cmd[2]\"\n")
	b.WriteString("end\n\n")

	b.WriteString("complete -c letterpdf -f\n\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c letterpdf -n __fish_letterpdf_needs_command -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_letterpdf_using_command %s'", c.Name)
		if c.Name == "generate" {
			cond = "__fish_letterpdf_generating"
		}
		if len(c.Flags) > 0 || len(c.Args) > 0 {
			b.WriteString("\n")
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c letterpdf -n %s", cond)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			fmt.Fprintf(&b, " -l %s", f.Long)
			switch f.Type {
			case flagBool:
			case flagEnum:
				fmt.Fprintf(&b, " -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				b.WriteString(" -r -F")
			case flagDir:
				b.WriteString(" -x -a '(__fish_complete_directories)'")
			default:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d '%s'\n", fishQuote(f.Desc))
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c letterpdf -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

// psQuote escapes s for a single-quoted PowerShell string.
func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + psQuote(it) + "'"
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

func generatePowerShell(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# powershell completion for letterpdf\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName letterpdf -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s' = '%s'\n", c.Name, psQuote(c.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		var words []string
		for _, f := range c.Flags {
			words = append(words, f.names()...)
		}
		fmt.Fprintf(&b, "        '%s' = %s\n", c.Name, psList(append(words, c.Args...)))
	}
	b.WriteString("    }\n\n")

	// Value flags without suggestions map to an empty list so PowerShell
	// falls back to path completion.
	b.WriteString("    $values = @{\n")
	for _, f := range valueFlags(cmds) {
		for _, n := range f.names() {
			fmt.Fprintf(&b, "        '%s' = %s\n", n, psList(f.Values))
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString(`    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })
    $position = $elements.Count
    if ($wordToComplete -ne '') { $position-- }

    $command = 'generate'
    if ($elements.Count -gt 1 -and $commands.Contains($elements[1])) { $command = $elements[1] }

    $prev = ''
    if ($position -gt 0) { $prev = $elements[$position - 1] }
    if ($values.ContainsKey($prev)) {
        $values[$prev] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    if ($position -eq 1 -and $wordToComplete -notlike '-*') {
        $commands.Keys | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'Command', $commands[$_])
        }
        return
    }

    $flags[$command] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)
    }
}
`)

	_, err := io.WriteString(w, b.String())
	return err
}

// ---------------------------------------------------------------------------
// Command
// ---------------------------------------------------------------------------

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(letterpdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(letterpdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    letterpdf completion fish > ~/.config/fish/completions/letterpdf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    letterpdf completion powershell | Out-String | Invoke-Expression")
}
