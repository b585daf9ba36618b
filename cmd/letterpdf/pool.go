package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-letterpdf"
)

// LetterGenerator is the part of *letterpdf.Generator the CLI uses.
type LetterGenerator interface {
	Generate(ctx context.Context, job letterpdf.Job) (*letterpdf.Result, error)
}

// Compile-time interface implementation check.
var _ LetterGenerator = (*letterpdf.Generator)(nil)

// Pool abstracts generator pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (LetterGenerator, error)
	Release(LetterGenerator)
	Size() int
	Close() error
}

// poolAdapter exposes a *letterpdf.GeneratorPool as a Pool.
type poolAdapter struct {
	pool *letterpdf.GeneratorPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire(ctx context.Context) (LetterGenerator, error) {
	g, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Release panics on a generator that did not come from the pool.
func (a *poolAdapter) Release(g LetterGenerator) {
	gen, ok := g.(*letterpdf.Generator)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", g))
	}
	a.pool.Release(gen)
}

func (a *poolAdapter) Size() int    { return a.pool.Size() }
func (a *poolAdapter) Close() error { return a.pool.Close() }
