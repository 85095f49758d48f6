// Package protect is the call boundary to the host data-protection service.
//
// A [Protector] encrypts data with a key that never leaves the host and that
// is bound either to the invoking user or to the local machine. Two backends
// exist: the Windows Data Protection API ([DPAPI], windows only) and a
// file-backed ML-KEM key store ([KeyStore]) for every other host.
package protect

import (
	"errors"
	"fmt"
)

// DefaultDescription is stored alongside every blob this tool protects.
const DefaultDescription = "Encrypted with Windows DPAPI through dpapibridge"

// Scope selects which host key protects the data.
type Scope uint8

const (
	// ScopeUser binds the blob to the invoking user's key.
	ScopeUser Scope = iota + 1
	// ScopeMachine binds the blob to the local machine's key; any user on the
	// host can unprotect it.
	ScopeMachine
)

func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeMachine:
		return "machine"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// Protector is the host data-protection capability.
//
// Unprotect needs no scope: the blob itself records which key protected it.
// Entropy is an optional extra secret; dpapibridge always passes nil.
type Protector interface {
	Protect(clear []byte, scope Scope, description string, entropy []byte) ([]byte, error)
	Unprotect(blob, entropy []byte) (clear []byte, description string, err error)
}

var (
	// ErrKeyNotFound is returned when the key for a blob's scope does not exist
	// on this host.
	ErrKeyNotFound = errors.New("protection key not found")

	// ErrInvalidScope is returned for a scope other than ScopeUser or ScopeMachine.
	ErrInvalidScope = errors.New("invalid key scope")

	// ErrUnsupported is returned when a backend is not available on this platform.
	ErrUnsupported = errors.New("protection backend not supported on this platform")
)

// Error is returned by every Protector operation that fails.
// Its message is the backend's message, unadorned, so it can be shown to the
// user verbatim.
type Error struct {
	Op  string // "protect" or "unprotect"
	Err error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
