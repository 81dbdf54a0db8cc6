// Package rpn evaluates integer formulas written in Reverse Polish Notation.
package rpn

import (
	"io"
	"os"
	"strconv"
	"strings"
)

// Evaluator evaluates one formula at a time. It holds no per-formula
// state, so a single Evaluator may be shared between goroutines as long as
// its trace sink is safe for concurrent use.
type Evaluator struct {
	verbose bool
	trace   TraceFunc
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithTraceWriter writes trace lines to w. Defaults to os.Stdout.
func WithTraceWriter(w io.Writer) Option {
	return func(e *Evaluator) {
		e.trace = writerTrace(w)
	}
}

// WithTraceHook delivers trace records to fn instead of a writer.
func WithTraceHook(fn TraceFunc) Option {
	return func(e *Evaluator) {
		e.trace = fn
	}
}

// New returns an Evaluator. When verbose is set, a trace record is emitted
// after every token.
func New(verbose bool, opts ...Option) *Evaluator {
	e := &Evaluator{
		verbose: verbose,
		trace:   writerTrace(os.Stdout),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verbose reports whether tracing is enabled.
func (e *Evaluator) Verbose() bool {
	return e.verbose
}

// Tokens splits a formula on runs of whitespace.
func Tokens(formula string) []string {
	return strings.Fields(formula)
}

// Eval evaluates formula and returns its value. Arithmetic wraps on int32
// overflow. Failures are reported as *EvalError.
func (e *Evaluator) Eval(formula string) (int32, error) {
	tokens := Tokens(formula)
	stack := make([]int32, 0, len(tokens))

	for i, token := range tokens {
		pos := i + 1

		if n, ok := parseOperand(token); ok {
			stack = append(stack, n)
		} else {
			if len(stack) < 2 {
				return 0, &EvalError{Kind: ErrInvalidSyntax, Position: pos}
			}
			x, y := stack[len(stack)-2], stack[len(stack)-1]
			stack = stack[:len(stack)-2]

			res, err := apply(token, x, y, pos)
			if err != nil {
				return 0, err
			}
			stack = append(stack, res)
		}

		if e.verbose && e.trace != nil {
			e.trace(Trace{
				Remaining: append([]string{}, tokens[pos:]...),
				Stack:     append([]int32{}, stack...),
			})
		}
	}

	if len(stack) != 1 {
		return 0, &EvalError{Kind: ErrInvalidSyntax}
	}
	return stack[0], nil
}

// parseOperand accepts base-10 int32 literals with an optional leading '-'.
func parseOperand(token string) (int32, bool) {
	if strings.HasPrefix(token, "+") {
		return 0, false
	}
	n, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

func apply(op string, x, y int32, pos int) (int32, error) {
	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return 0, &EvalError{Kind: ErrDivisionByZero, Position: pos}
		}
		return x / y, nil
	case "%":
		if y == 0 {
			return 0, &EvalError{Kind: ErrDivisionByZero, Position: pos}
		}
		return x % y, nil
	default:
		return 0, &EvalError{Kind: ErrInvalidToken, Position: pos}
	}
}
