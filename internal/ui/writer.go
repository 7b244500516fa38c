// Package ui provides the engine's output writer with pager support.
//
// The pager runs whatever command the configuration or $PAGER names, the way
// git and man do. Only configure pagers you trust.
package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"

	"github.com/footprint-tools/comfort/internal/domain"
)

// Writer implements domain.OutputWriter.
type Writer struct {
	out           io.Writer
	pagerDisabled bool
	pagerOverride string
	envGetter     func(string) string
	isTerminal    func(io.Writer) bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithPagerDisabled disables the pager.
func WithPagerDisabled() WriterOption {
	return func(w *Writer) {
		w.pagerDisabled = true
	}
}

// WithPager sets the pager command. "cat" bypasses paging.
func WithPager(cmd string) WriterOption {
	return func(w *Writer) {
		w.pagerOverride = cmd
	}
}

// WithEnvGetter sets the environment variable getter function.
func WithEnvGetter(fn func(string) string) WriterOption {
	return func(w *Writer) {
		w.envGetter = fn
	}
}

// NewWriter creates a Writer on stdout.
func NewWriter(opts ...WriterOption) *Writer {
	return NewWriterTo(os.Stdout, opts...)
}

// NewWriterTo creates a Writer on out.
func NewWriterTo(out io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{
		out:        out,
		envGetter:  os.Getenv,
		isTerminal: IsTerminal,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Unwrap returns the underlying output. Child processes get it directly so
// they see the real file.
func (w *Writer) Unwrap() io.Writer {
	return w.out
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	return w.out.Write(p)
}

// Printf formats and prints to the output.
func (w *Writer) Printf(format string, args ...any) (int, error) {
	return fmt.Fprintf(w.out, format, args...)
}

// Println prints a line to the output.
func (w *Writer) Println(args ...any) (int, error) {
	return fmt.Fprintln(w.out, args...)
}

// Pager displays content through a pager when the output is a terminal.
// Resolution order: disabled, not a terminal, WithPager, $PAGER, less.
func (w *Writer) Pager(content string) {
	if w.pagerDisabled || !w.isTerminal(w.out) {
		fmt.Fprint(w.out, content)
		return
	}

	pager := w.pagerOverride
	if pager == "" && w.envGetter != nil {
		pager = w.envGetter("PAGER")
	}
	if pager == "" {
		w.runPager("less", []string{"-FRSX"}, content)
		return
	}

	parts := strings.Fields(pager)
	if len(parts) == 0 || parts[0] == "cat" {
		fmt.Fprint(w.out, content)
		return
	}
	w.runPager(parts[0], parts[1:], content)
}

func (w *Writer) runPager(pager string, args []string, content string) {
	cmd := exec.Command(pager, args...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = w.out
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprint(w.out, content)
	}
}

var _ domain.OutputWriter = (*Writer)(nil)
