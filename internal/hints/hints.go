// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors (pdf output).
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForMermaidCLI returns install instructions for the diagram renderer.
func ForMermaidCLI() string {
	return formatHints([]string{
		"install with: npm install -g @mermaid-js/mermaid-cli",
		"or point diagrams.binary / --mmdc at an existing mmdc",
	})
}

// ForPandoc returns install instructions for the docx converter.
func ForPandoc() string {
	return format("install from https://pandoc.org/installing.html, or use --format html|pdf")
}

// ForTimeout returns a hint about raising the per-diagram timeout.
func ForTimeout() string {
	return format("complex diagrams may need a longer --diagram-timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config with a path, or creating the file in the user config dir.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-md2docx/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory and image store errors.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable (--output)")
}

// ForRootNotFound returns a hint for a missing documentation root.
func ForRootNotFound() string {
	return format("pass the directory that holds your .md files, e.g. md2docx docs/")
}

// ForTemplateNotFound returns a hint for a missing reference document.
func ForTemplateNotFound() string {
	return format("--template expects a .docx file; paths are relative to the current directory")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
