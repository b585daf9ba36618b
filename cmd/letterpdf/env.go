package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-letterpdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	NewPool func(size int, opts ...letterpdf.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewPool: func(size int, opts ...letterpdf.Option) Pool {
			return &poolAdapter{pool: letterpdf.NewGeneratorPool(size, opts...)}
		},
	}
}
