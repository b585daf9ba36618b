package main

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-letterpdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Mock generator and pool
// ---------------------------------------------------------------------------

// mockGenerator records jobs and fails those whose output is in fail.
type mockGenerator struct {
	mu       sync.Mutex
	jobs     []letterpdf.Job
	fail     map[string]error
	failStep string // step reported for failures (default render)
	pages    int
	qrErr    error
}

func (m *mockGenerator) Generate(_ context.Context, job letterpdf.Job) (*letterpdf.Result, error) {
	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	m.mu.Unlock()

	if err := m.fail[job.OutputPath]; err != nil {
		step := m.failStep
		if step == "" {
			step = letterpdf.StepRender
		}
		return &letterpdf.Result{Steps: []letterpdf.StepResult{{Name: step, Err: err}}}, err
	}
	return &letterpdf.Result{OutputPath: job.OutputPath, Pages: m.pages, QRErr: m.qrErr}, nil
}

func (m *mockGenerator) getJobs() []letterpdf.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]letterpdf.Job(nil), m.jobs...)
}

// mockPool hands out one shared generator.
type mockPool struct {
	mu         sync.Mutex
	gen        LetterGenerator
	size       int
	acquireErr error
	acquired   int
	released   int
	closed     bool
}

func (p *mockPool) Acquire(context.Context) (LetterGenerator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.gen, nil
}

func (p *mockPool) Release(LetterGenerator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *mockPool) Size() int { return p.size }

func (p *mockPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// newTestEnv returns an environment whose pools are pool, resized to the
// requested size.
func newTestEnv(pool *mockPool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		NewPool: func(size int, _ ...letterpdf.Option) Pool {
			pool.size = size
			return pool
		},
	}
	return env, &stdout, &stderr
}

// clearLetterEnv blanks every LETTERPDF_* variable the CLI reads.
// Tests calling it cannot use t.Parallel.
func clearLetterEnv(t *testing.T) {
	t.Helper()
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
}
