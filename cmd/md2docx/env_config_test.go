package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-md2docx/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - MD2DOCX_* variables
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars map[string]string
		want envConfig
	}{
		{
			name: "empty",
			vars: nil,
			want: envConfig{},
		},
		{
			name: "all set",
			vars: map[string]string{
				"MD2DOCX_CONFIG":          "work",
				"MD2DOCX_OUTPUT_DIR":      "dist",
				"MD2DOCX_FORMAT":          "pdf",
				"MD2DOCX_TEMPLATE":        "ref.docx",
				"MD2DOCX_MMDC":            "/opt/mmdc",
				"MD2DOCX_PANDOC":          "/opt/pandoc",
				"MD2DOCX_DIAGRAM_TIMEOUT": "90s",
				"MD2DOCX_WORKERS":         "4",
			},
			want: envConfig{
				ConfigPath:     "work",
				OutputDir:      "dist",
				Format:         "pdf",
				Template:       "ref.docx",
				Mmdc:           "/opt/mmdc",
				Pandoc:         "/opt/pandoc",
				DiagramTimeout: 90 * time.Second,
				Workers:        4,
			},
		},
		{
			name: "malformed numbers ignored",
			vars: map[string]string{
				"MD2DOCX_DIAGRAM_TIMEOUT": "soon",
				"MD2DOCX_WORKERS":         "-2",
			},
			want: envConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := loadEnvConfig(func(k string) string { return tt.vars[k] })
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"HOME=/root",
		"MD2DOCX_FORMAT=pdf",
		"MD2DOCX_CONTAINER=1",
		"MD2DOCX_WOKRERS=2",
	})

	want := "warning: unknown environment variable MD2DOCX_WOKRERS (typo?)\n"
	if buf.String() != want {
		t.Errorf("warnUnknownEnvVars() wrote %q, want %q", buf.String(), want)
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Output.Filename = "from-file"

	applyEnvConfig(&envConfig{
		OutputDir:      "dist",
		Format:         "html",
		Template:       "ref.docx",
		Mmdc:           "/opt/mmdc",
		Pandoc:         "/opt/pandoc",
		DiagramTimeout: 2 * time.Minute,
		Workers:        3,
	}, cfg)

	want := config.DefaultConfig()
	want.Output.Dir = "dist"
	want.Output.Filename = "from-file"
	want.Output.Format = "html"
	want.Pandoc.Template = "ref.docx"
	want.Pandoc.Binary = "/opt/pandoc"
	want.Diagrams.Binary = "/opt/mmdc"
	want.Diagrams.Timeout = config.Duration(2 * time.Minute)
	want.Diagrams.Workers = 3

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("applyEnvConfig() mismatch (-want +got):\n%s", diff)
	}
}
