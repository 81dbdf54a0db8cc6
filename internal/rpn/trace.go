package rpn

import (
	"fmt"
	"io"
	"strings"
)

// Trace is a snapshot taken after one token has been consumed.
type Trace struct {
	Remaining []string `json:"remaining"`
	Stack     []int32  `json:"stack"`
}

// String renders the snapshot as "t: [a b], s:[1 2]".
func (t Trace) String() string {
	return fmt.Sprintf("t: [%s], s:%v", strings.Join(t.Remaining, " "), t.Stack)
}

// TraceFunc receives trace records in verbose mode.
type TraceFunc func(Trace)

func writerTrace(w io.Writer) TraceFunc {
	return func(t Trace) {
		fmt.Fprintln(w, t.String())
	}
}
