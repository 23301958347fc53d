package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/docconv"
	"github.com/alnah/go-md2docx/internal/render"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Format   string     `json:"format"`
	Pandoc   toolInfo   `json:"pandoc"`
	Mermaid  toolInfo   `json:"mermaid"`
	Chrome   toolInfo   `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds detection results for one external tool.
type toolInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var jsonOutput bool
	var name string
	fs.BoolVar(&jsonOutput, "json", false, "JSON output")
	fs.StringVarP(&name, "config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfigOrDefault(name, envCfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	applyEnvConfig(envCfg, cfg)

	result := runDoctor(ctx, cfg, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks. A missing tool is an error when
// the configured format needs it, a warning otherwise.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	format, err := docconv.ParseFormat(cfg.Output.Format)
	if err != nil {
		format = docconv.FormatDOCX
	}

	result := &doctorResult{
		Status: "ready",
		Format: string(format),
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkPandoc(ctx, result, cfg.Pandoc.Binary, format == docconv.FormatDOCX, env)
	checkMermaid(ctx, result, cfg.Diagrams.Binary, env)
	checkChrome(ctx, result, format == docconv.FormatPDF, env)
	checkEnvironment(result, format == docconv.FormatPDF, env)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// report records msg as an error when required, a warning otherwise.
func report(result *doctorResult, required bool, msg string) {
	if required {
		result.Errors = append(result.Errors, msg)
	} else {
		result.Warnings = append(result.Warnings, msg)
	}
}

// checkPandoc locates pandoc and reads the first line of its version.
func checkPandoc(ctx context.Context, result *doctorResult, binary string, required bool, env *Environment) {
	if binary == "" {
		binary = docconv.DefaultPandocBinary
	}
	path, err := env.LookPath(binary)
	if err != nil {
		report(result, required, fmt.Sprintf("pandoc not found (%s). Needed for docx output", binary))
		return
	}
	result.Pandoc.Found = true
	result.Pandoc.Path = path

	vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	stdout, _, err := env.Runner.Run(vctx, "", path, "--version")
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get pandoc version: %v", err))
		return
	}
	if line, _, _ := strings.Cut(stdout, "\n"); line != "" {
		result.Pandoc.Version = strings.TrimSpace(line)
	}
}

// checkMermaid locates mmdc. Without it every diagram becomes a placeholder,
// which is a warning, not an error.
func checkMermaid(ctx context.Context, result *doctorResult, binary string, env *Environment) {
	m := render.NewMermaidCLI(render.WithBinary(binary), render.WithRunner(env.Runner))
	path, err := env.LookPath(m.Binary())
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Mermaid CLI not found (%s). Diagrams will be replaced by placeholders", m.Binary()))
		return
	}
	result.Mermaid.Found = true
	result.Mermaid.Path = path

	version, err := m.Version(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get mmdc version: %v", err))
		return
	}
	result.Mermaid.Version = version
}

// checkChrome detects Chrome/Chromium for pdf output.
func checkChrome(ctx context.Context, result *doctorResult, required bool, env *Environment) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = env.ChromePath()
		if !found {
			report(result, required, "Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		report(result, required, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	stdout, _, err := env.Runner.Run(vctx, "", chromePath, "--version")
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(stdout)
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, pdf bool, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if pdf && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer returns (isContainer, hint) where hint names the signal found.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("MD2DOCX_CONTAINER") == "1" {
		return true, "MD2DOCX_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "md2docx-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

func printTool(w io.Writer, name string, t toolInfo) {
	fmt.Fprintln(w, name)
	if !t.Found {
		fmt.Fprintln(w, "  [--] Not found")
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "  [OK] Found at %s\n", t.Path)
	if t.Version != "" {
		fmt.Fprintf(w, "  [OK] Version: %s\n", t.Version)
	}
	fmt.Fprintln(w)
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintf(w, "md2docx doctor (format: %s)\n", r.Format)
	fmt.Fprintln(w)

	printTool(w, "Pandoc", r.Pandoc)
	printTool(w, "Mermaid CLI", r.Mermaid)
	printTool(w, "Chrome/Chromium", r.Chrome)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to generate")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
