package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"rpn-calculator/internal/rpn"
)

func TestRunSeparatesResultsAndErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := New(rpn.New(false), &stdout, &stderr, nil)

	input := "2 3 +\n1 1 1 +\n10 3 -\n+ 1 1\n1 2 ^\n4 0 /\n7\n"
	summary, err := r.Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := stdout.String(), "5\n7\n7\n"; got != want {
		t.Fatalf("expected stdout %q, got %q", want, got)
	}

	wantErr := "invalid syntax\ninvalid syntax at 1\ninvalid token at 3\ndivision by zero at 3\n"
	if got := stderr.String(); got != wantErr {
		t.Fatalf("expected stderr %q, got %q", wantErr, got)
	}

	if summary.Lines != 7 || summary.Succeeded != 3 || len(summary.Failed) != 4 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Failed[0].Line != 2 {
		t.Fatalf("expected first failure on line 2, got %d", summary.Failed[0].Line)
	}
}

func TestRunEmptyLineIsInvalidSyntax(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := New(rpn.New(false), &stdout, &stderr, nil)

	summary, err := r.Run(context.Background(), strings.NewReader("\n1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stderr.String() != "invalid syntax\n" {
		t.Fatalf("expected invalid syntax on stderr, got %q", stderr.String())
	}
	if stdout.String() != "1\n" {
		t.Fatalf("expected 1 on stdout, got %q", stdout.String())
	}
	if !errors.Is(summary.Err(), rpn.ErrInvalidSyntax) {
		t.Fatalf("expected aggregated error to wrap ErrInvalidSyntax, got %v", summary.Err())
	}
}

func TestRunAbortsOnInvalidEncoding(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := New(rpn.New(false), &stdout, &stderr, nil)

	summary, err := r.Run(context.Background(), strings.NewReader("1 2 +\n\xff\xfe\n3\n"))
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
	if summary.Lines != 2 {
		t.Fatalf("expected to stop at line 2, got %d", summary.Lines)
	}
	if stdout.String() != "3\n" {
		t.Fatalf("expected only the first result, got %q", stdout.String())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestRunAbortsOnReadError(t *testing.T) {
	r := New(rpn.New(false), io.Discard, io.Discard, nil)

	_, err := r.Run(context.Background(), failingReader{})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestRunStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	r := New(rpn.New(false), &stdout, io.Discard, nil)

	_, err := r.Run(ctx, strings.NewReader("1\n2\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no output, got %q", stdout.String())
	}
}

func TestRunLogsRejectedFormulas(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := New(rpn.New(false), io.Discard, io.Discard, zap.New(core))

	if _, err := r.Run(context.Background(), strings.NewReader("1 x\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rejected := logs.FilterMessage("formula rejected").All()
	if len(rejected) != 1 {
		t.Fatalf("expected 1 rejection log, got %d", len(rejected))
	}
	fields := rejected[0].ContextMap()
	if fields["kind"] != "invalid_syntax" {
		t.Fatalf("expected kind invalid_syntax, got %#v", fields["kind"])
	}
	if fields["line"] != int64(1) {
		t.Fatalf("expected line 1, got %#v", fields["line"])
	}
}

func TestSummaryErrNilWhenNoFailures(t *testing.T) {
	if err := (Summary{Lines: 3, Succeeded: 3}).Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
