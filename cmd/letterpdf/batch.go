package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/hints"
)

// LetterResult holds the outcome of a single letter.
type LetterResult struct {
	OutputPath string
	Pages      int
	QRErr      error
	Err        error
	Duration   time.Duration
}

// generateBatch generates jobs concurrently, one generator per worker.
// Results keep the order of jobs.
func generateBatch(ctx context.Context, pool Pool, jobs []letterpdf.Job) []LetterResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))

	results := make([]LetterResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			gen, err := pool.Acquire(ctx)
			if err != nil {
				// Another worker may still drain the queue; this one fails
				// what it takes.
				for idx := range queue {
					results[idx] = LetterResult{OutputPath: jobs[idx].OutputPath, Err: err}
				}
				return
			}
			defer pool.Release(gen)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = LetterResult{OutputPath: jobs[idx].OutputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = generateLetter(ctx, gen, jobs[idx])
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// generateLetter runs one job and returns its result.
func generateLetter(ctx context.Context, gen LetterGenerator, job letterpdf.Job) LetterResult {
	start := time.Now()
	result := LetterResult{OutputPath: job.OutputPath}

	res, err := gen.Generate(ctx, job)
	result.Duration = time.Since(start)
	if res != nil {
		result.Pages = res.Pages
		result.QRErr = res.QRErr
	}
	if err != nil {
		if failedStep(res) == letterpdf.StepWrite {
			err = fmt.Errorf("%w: %w", ErrWriteLetter, err)
		}
		result.Err = err
	}
	return result
}

// failedStep returns the name of the step that failed, if any.
func failedStep(res *letterpdf.Result) string {
	if res == nil {
		return ""
	}
	for _, s := range res.Steps {
		if s.Err != nil && s.Name != letterpdf.StepQR {
			return s.Name
		}
	}
	return ""
}

// ResultSummary holds the count of succeeded and failed letters.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed letters.
func countResults(results []LetterResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// batchError reports how many letters failed and unwraps to the first
// failure so the exit code reflects its category.
type batchError struct {
	failed int
	total  int
	first  error
	hint   string // printed after the message for a single letter
}

func (e *batchError) Error() string {
	if e.total == 1 {
		return e.first.Error()
	}
	return fmt.Sprintf("%d of %d letters failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }

// printResults writes one line per letter and returns a *batchError when
// any letter failed. A single failed letter is left to the caller to print.
func printResults(results []LetterResult, common commonFlags, h hinter, env *Environment) error {
	summary := countResults(results)
	var first error

	for _, r := range results {
		if r.QRErr != nil {
			fmt.Fprintf(env.Stderr, "warning: %s: QR image: %v%s\n", r.OutputPath, r.QRErr, hints.ForQRImage())
		}

		if r.Err != nil {
			if first == nil {
				first = r.Err
			}
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.OutputPath, r.Err, h.hint(r.Err))
			}
			continue
		}

		if common.quiet {
			continue
		}

		if common.verbose {
			fmt.Fprintf(env.Stdout, "Created %s (%s, %v)\n", r.OutputPath, pagesLabel(r.Pages), r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s (%s)\n", r.OutputPath, pagesLabel(r.Pages))
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if first == nil {
		return nil
	}
	be := &batchError{failed: summary.Failed, total: len(results), first: first}
	if len(results) == 1 {
		be.hint = h.hint(first)
	}
	return be
}

// pagesLabel formats a page count; zero means it could not be read.
func pagesLabel(n int) string {
	switch n {
	case 0:
		return "page count unknown"
	case 1:
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}

// hinter picks an actionable hint for a generation error.
type hinter struct {
	ctx    context.Context // bounds the template listing; nil means Background
	engine string
	store  letterpdf.TemplateStore
}

func (h hinter) hint(err error) string {
	switch {
	case errors.Is(err, letterpdf.ErrBrowserConnect):
		return hints.ForBrowserConnect(h.engine)
	case errors.Is(err, letterpdf.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, letterpdf.ErrTemplateNotFound):
		ctx := h.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		names, _ := letterpdf.ListTemplates(ctx, h.store)
		return hints.ForTemplateNotFound(names)
	case errors.Is(err, ErrWriteLetter), errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
