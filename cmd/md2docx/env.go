package main

import (
	"context"
	"io"
	"os"

	"github.com/go-rod/rod/lib/launcher"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/process"
)

// generator is the part of md2docx.Generator the CLI drives.
type generator interface {
	Generate(ctx context.Context, in md2docx.Input) (*md2docx.Result, error)
	Close() error
}

// Compile-time interface implementation check.
var _ generator = (*md2docx.Generator)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string

	// NewGenerator builds the generator for one CLI invocation.
	NewGenerator func(opts ...md2docx.Option) generator

	// Tool discovery used by doctor.
	LookPath   func(name string) (string, error)
	ChromePath func() (string, bool)
	Runner     process.CommandRunner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewGenerator: func(opts ...md2docx.Option) generator {
			return md2docx.New(opts...)
		},
		LookPath:   process.LookPath,
		ChromePath: launcher.LookPath,
		Runner:     &process.ExecRunner{},
	}
}
