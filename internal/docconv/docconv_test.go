package docconv

import (
	"context"
	"errors"
	"testing"
)

// mockRunner records the last command and returns canned output.
type mockRunner struct {
	stdout     string
	stderr     string
	err        error
	dir        string
	calledWith []string
}

func (m *mockRunner) Run(_ context.Context, dir, name string, args ...string) (string, string, error) {
	m.dir = dir
	m.calledWith = append([]string{name}, args...)
	return m.stdout, m.stderr, m.err
}

// ---------------------------------------------------------------------------
// TestParseFormat - Format names
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr error
	}{
		{input: "docx", want: FormatDOCX},
		{input: "HTML", want: FormatHTML},
		{input: " pdf ", want: FormatPDF},
		{input: "odt", wantErr: ErrUnknownFormat},
		{input: "", wantErr: ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseFormat(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat_Ext(t *testing.T) {
	t.Parallel()

	for _, f := range Formats {
		if f.Ext() != string(f) {
			t.Errorf("%q.Ext() = %q", f, f.Ext())
		}
	}
}
