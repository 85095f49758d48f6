// Package input obtains the bytes a flow operates on.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrNoInput is returned when there is no inline input and standard input is
// an interactive terminal.
var ErrNoInput = errors.New("no data available on standard input")

// Resolver reads the payload either from an inline argument or from Stdin.
type Resolver struct {
	// Stdin is read to EOF when no inline input is given. It is closed
	// afterwards if it implements io.Closer.
	Stdin io.Reader
	// Redirected reports that Stdin is a pipe or file rather than a terminal.
	// Stdin is never read when it is false.
	Redirected bool
	Logger     *slog.Logger
}

// Resolve returns the payload bytes. A non-nil inline value wins and Stdin
// is left untouched; an empty inline value is a valid empty payload.
// Bytes are returned exactly as received.
func (r *Resolver) Resolve(inline *string) ([]byte, error) {
	logger := r.logger()

	if inline != nil {
		logger.Debug("input resolved", "source", "argument", "bytes", len(*inline))
		return []byte(*inline), nil
	}

	if !r.Redirected || r.Stdin == nil {
		return nil, ErrNoInput
	}

	if c, ok := r.Stdin.(io.Closer); ok {
		defer c.Close()
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Stdin); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	logger.Debug("input resolved", "source", "stdin", "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
