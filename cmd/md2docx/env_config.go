package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/config"
)

// envConfig holds configuration from MD2DOCX_* environment variables.
// Provides CI-friendly overrides without a YAML file.
type envConfig struct {
	ConfigPath     string        // MD2DOCX_CONFIG
	OutputDir      string        // MD2DOCX_OUTPUT_DIR
	Format         string        // MD2DOCX_FORMAT
	Template       string        // MD2DOCX_TEMPLATE
	Mmdc           string        // MD2DOCX_MMDC
	Pandoc         string        // MD2DOCX_PANDOC
	DiagramTimeout time.Duration // MD2DOCX_DIAGRAM_TIMEOUT
	Workers        int           // MD2DOCX_WORKERS
}

const envPrefix = "MD2DOCX_"

// knownEnvVars lists valid MD2DOCX_* variables, used to flag typos.
var knownEnvVars = map[string]bool{
	"MD2DOCX_CONFIG":          true,
	"MD2DOCX_OUTPUT_DIR":      true,
	"MD2DOCX_FORMAT":          true,
	"MD2DOCX_TEMPLATE":        true,
	"MD2DOCX_MMDC":            true,
	"MD2DOCX_PANDOC":          true,
	"MD2DOCX_DIAGRAM_TIMEOUT": true,
	"MD2DOCX_WORKERS":         true,
	"MD2DOCX_CONTAINER":       true, // read by doctor
}

// loadEnvConfig reads the recognized variables. Malformed durations and
// counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MD2DOCX_CONFIG"),
		OutputDir:  getenv("MD2DOCX_OUTPUT_DIR"),
		Format:     getenv("MD2DOCX_FORMAT"),
		Template:   getenv("MD2DOCX_TEMPLATE"),
		Mmdc:       getenv("MD2DOCX_MMDC"),
		Pandoc:     getenv("MD2DOCX_PANDOC"),
	}

	if v := getenv("MD2DOCX_DIAGRAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DiagramTimeout = d
		}
	}
	if v := getenv("MD2DOCX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized MD2DOCX_* variable.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set variables on cfg.
// Precedence: CLI flags > environment > config file > defaults
// (flags are applied afterwards by mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Format != "" {
		cfg.Output.Format = env.Format
	}
	if env.Template != "" {
		cfg.Pandoc.Template = env.Template
	}
	if env.Mmdc != "" {
		cfg.Diagrams.Binary = env.Mmdc
	}
	if env.Pandoc != "" {
		cfg.Pandoc.Binary = env.Pandoc
	}
	if env.DiagramTimeout > 0 {
		cfg.Diagrams.Timeout = config.Duration(env.DiagramTimeout)
	}
	if env.Workers > 0 {
		cfg.Diagrams.Workers = env.Workers
	}
}
