package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrModeNotSet is returned when neither --encrypt nor --decrypt was given.
	ErrModeNotSet = errors.New("mode not set (you must either choose --encrypt or --decrypt)")

	// ErrConflictingModes is returned when both --encrypt and --decrypt were given.
	ErrConflictingModes = errors.New("conflicting modes (choose only one of --encrypt or --decrypt)")

	// ErrNotUTF8 is returned when decrypted data headed for standard output is
	// not valid UTF-8 and --base64 was not requested.
	ErrNotUTF8 = errors.New("decrypted data is not valid UTF-8 text; use --base64")
)

// Kind classifies a failure. Every kind is terminal.
type Kind int

const (
	// KindInternal covers configuration and other unexpected failures.
	KindInternal Kind = iota
	// KindUsage is an unknown or malformed flag, or a missing or conflicting mode.
	KindUsage
	// KindInputUnavailable means there was no inline input and nothing on stdin.
	KindInputUnavailable
	// KindFormat is a base64 or text decoding failure.
	KindFormat
	// KindGateway is a failed protect or unprotect call.
	KindGateway
	// KindOutput is a failed write to standard output or the output file.
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindUsage:
		return "usage"
	case KindInputUnavailable:
		return "input unavailable"
	case KindFormat:
		return "format"
	case KindGateway:
		return "gateway"
	case KindOutput:
		return "output"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ExitCode is the process exit status for a failure of this kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindUsage:
		return 2
	case KindInputUnavailable:
		return 3
	case KindFormat:
		return 4
	case KindGateway:
		return 5
	case KindOutput:
		return 6
	default:
		return 1
	}
}

// Error is the single diagnostic a failed invocation reports.
type Error struct {
	Kind Kind
	// Message is the user-facing text. When empty, Err's text is used.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns e.Kind.ExitCode().
func (e *Error) ExitCode() int {
	return e.Kind.ExitCode()
}

// UsageError wraps err as a KindUsage failure.
func UsageError(err error) *Error {
	return &Error{Kind: KindUsage, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}
