package main

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// colorWriter paints each line written to it.
type colorWriter struct {
	w io.Writer
	c *color.Color
}

func (cw colorWriter) Write(p []byte) (int, error) {
	for _, line := range strings.SplitAfter(string(p), "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		var err error
		if len(text) < len(line) {
			_, err = cw.c.Fprintln(cw.w, text)
		} else {
			_, err = cw.c.Fprint(cw.w, text)
		}
		if err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// errorWriter returns w, wrapped to print red when w is a terminal and
// colour has not been disabled.
func errorWriter(w io.Writer, noColor bool) io.Writer {
	if noColor || !isTerminal(w) {
		return w
	}
	c := color.New(color.FgRed)
	c.EnableColor()
	return colorWriter{w: w, c: c}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
