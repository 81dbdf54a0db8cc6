// Package runner feeds lines from an input source through an rpn.Evaluator,
// one formula per line.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"rpn-calculator/internal/rpn"
)

// MaxLineSize bounds a single formula line.
const MaxLineSize = 1024 * 1024

// ErrInvalidEncoding aborts a run when a line is not valid UTF-8.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

// LineError is a formula failure tied to its input line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Summary reports what a run did.
type Summary struct {
	Lines     int
	Succeeded int
	Failed    []*LineError
}

// Err aggregates every failed line, or returns nil when all lines evaluated.
func (s Summary) Err() error {
	var result *multierror.Error
	for _, f := range s.Failed {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}

// Runner writes one result to stdout or one message to stderr per line.
type Runner struct {
	eval   *rpn.Evaluator
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
}

func New(eval *rpn.Evaluator, stdout, stderr io.Writer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		eval:   eval,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// Run evaluates every line of r. Formula errors are reported and skipped;
// read failures, invalid encoding and context cancellation stop the run.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Summary, error) {
	var summary Summary

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Lines++
		line := scanner.Bytes()
		if !utf8.Valid(line) {
			return summary, fmt.Errorf("line %d: %w", summary.Lines, ErrInvalidEncoding)
		}

		value, err := r.eval.Eval(string(line))
		if err != nil {
			summary.Failed = append(summary.Failed, &LineError{Line: summary.Lines, Err: err})
			r.logger.Debug("formula rejected",
				zap.Int("line", summary.Lines),
				zap.String("kind", rpn.KindName(err)),
				zap.Error(err),
			)
			if _, werr := fmt.Fprintln(r.stderr, err); werr != nil {
				return summary, fmt.Errorf("write error output: %w", werr)
			}
			continue
		}

		summary.Succeeded++
		if _, werr := fmt.Fprintln(r.stdout, value); werr != nil {
			return summary, fmt.Errorf("write result: %w", werr)
		}
	}

	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read input: %w", err)
	}

	r.logger.Debug("input processed",
		zap.Int("lines", summary.Lines),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", len(summary.Failed)),
	)

	return summary, nil
}
