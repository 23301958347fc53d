package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx <command> [flags] [args]")
	fmt.Fprintln(w, "       md2docx <source-dir> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate     Combine a Markdown tree into one document")
	fmt.Fprintln(w, "  doctor       Check pandoc, mmdc and Chrome")
	fmt.Fprintln(w, "  config       Print the effective configuration")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2docx help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx generate [source-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Collect every .md file under source-dir (default: current directory),")
	fmt.Fprintln(w, "render Mermaid diagrams to cached PNG images and convert the result.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>            Output directory (default: build)")
	fmt.Fprintln(w, "  -f, --filename <name>         Document name (default: output)")
	fmt.Fprintln(w, "      --format <s>              docx, html or pdf (default: docx)")
	fmt.Fprintln(w, "  -t, --template <path>         Reference .docx for styles")
	fmt.Fprintln(w, "      --title <s>               html/pdf document title")
	fmt.Fprintln(w, "      --pandoc <path>           pandoc executable")
	fmt.Fprintln(w, "      --css <path>              Stylesheet for html/pdf output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagrams:")
	fmt.Fprintln(w, "      --fence <s>               Code fence language (default: mermaid)")
	fmt.Fprintln(w, "      --images-dir <dir>        Image cache inside the output dir (default: images)")
	fmt.Fprintln(w, "      --mmdc <path>             Mermaid CLI executable")
	fmt.Fprintln(w, "      --diagram-timeout <d>     Timeout per diagram (default: 60s)")
	fmt.Fprintln(w, "  -w, --workers <n>             Parallel renders (default: 1)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>           Config file name or path")
	fmt.Fprintln(w, "      --watch                   Regenerate when Markdown files change")
	fmt.Fprintln(w, "  -q, --quiet                   Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                 Show debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2DOCX_CONFIG, MD2DOCX_OUTPUT_DIR, MD2DOCX_FORMAT, MD2DOCX_TEMPLATE,")
	fmt.Fprintln(w, "  MD2DOCX_MMDC, MD2DOCX_PANDOC, MD2DOCX_DIAGRAM_TIMEOUT, MD2DOCX_WORKERS")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success (diagram failures included), 1 general, 2 usage/config,")
	fmt.Fprintln(w, "  3 source/output/image store, 4 document converter")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: md2docx doctor [--json] [-c config]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that the tools needed by the configured format are installed.")
	case "config":
		fmt.Fprintln(env.Stdout, "Usage: md2docx config [-c config]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Print the effective configuration as YAML (file + environment).")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2docx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2docx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
