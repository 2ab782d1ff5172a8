// Package output provides the file-or-stdout sink used by commands that
// emit text: witnesses, staged transactions and keys.
package output

import (
	"fmt"
	"io"
	"os"
)

// WriteError reports a failure to open, write or close an output.
type WriteError struct {
	// Path is the output file, or "<stdout>".
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Stdout is the display name of standard output in errors.
const Stdout = "<stdout>"

// stdout is replaced in tests.
var stdout io.Writer = os.Stdout

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Open returns a writer for path, truncating an existing file. An empty
// path selects standard output, which Close leaves open.
func Open(path string, perm os.FileMode) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	return f, nil
}

// Write opens path, hands the writer to fn and closes it before returning.
// The sink is closed on every path; a close failure is reported only when
// nothing failed earlier.
func Write(path string, perm os.FileMode, fn func(io.Writer) error) (err error) {
	w, err := Open(path, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = &WriteError{Path: displayName(path), Err: cerr}
		}
	}()

	if err := fn(w); err != nil {
		return &WriteError{Path: displayName(path), Err: err}
	}
	return nil
}

// WriteLine writes s followed by a newline to path, or stdout.
func WriteLine(path string, s string) error {
	return Write(path, 0644, func(w io.Writer) error {
		_, err := io.WriteString(w, s+"\n")
		return err
	})
}

func displayName(path string) string {
	if path == "" {
		return Stdout
	}
	return path
}
