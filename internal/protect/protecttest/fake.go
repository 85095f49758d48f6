// Package protecttest provides a deterministic Protector for tests.
package protecttest

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vaultsandbox/dpapibridge/internal/protect"
)

var _ protect.Protector = (*Fake)(nil)

var magic = []byte("XOR1")

// ErrBadData mirrors the message DPAPI gives for a blob it cannot parse.
var ErrBadData = errors.New("the data is invalid")

// ErrWrongContext mirrors the message DPAPI gives when the key that protected
// a blob is not available to the caller.
var ErrWrongContext = errors.New("key not valid for use in specified state")

// Fake XORs data with a key stretched from a per-scope passphrase. It is not
// protection; it only makes the blob differ from the input and round trip.
//
// Blob layout: "XOR1" || scope (1) || description length (2, BE) ||
// description || xor(clear)
type Fake struct {
	// Passphrase seeds the per-scope XOR keys.
	Passphrase string
	// Unavailable lists scopes whose key this host "does not have"; Unprotect
	// of a blob in such a scope fails with ErrWrongContext.
	Unavailable map[protect.Scope]bool
	// ProtectErr and UnprotectErr, when set, are returned instead of running.
	ProtectErr   error
	UnprotectErr error

	ProtectCalls   int
	UnprotectCalls int
	LastScope      protect.Scope
	LastEntropy    []byte
}

// New returns a Fake with both scopes available.
func New() *Fake {
	return &Fake{Passphrase: "protecttest"}
}

// Protect implements protect.Protector.
func (f *Fake) Protect(clear []byte, scope protect.Scope, description string, entropy []byte) ([]byte, error) {
	f.ProtectCalls++
	f.LastScope = scope
	f.LastEntropy = entropy
	if f.ProtectErr != nil {
		return nil, &protect.Error{Op: "protect", Err: f.ProtectErr}
	}
	if scope != protect.ScopeUser && scope != protect.ScopeMachine {
		return nil, &protect.Error{Op: "protect", Err: protect.ErrInvalidScope}
	}

	blob := make([]byte, 0, len(magic)+3+len(description)+len(clear))
	blob = append(blob, magic...)
	blob = append(blob, byte(scope))
	blob = binary.BigEndian.AppendUint16(blob, uint16(len(description)))
	blob = append(blob, description...)
	return append(blob, xorBytes(clear, f.key(scope, len(clear)))...), nil
}

// Unprotect implements protect.Protector.
func (f *Fake) Unprotect(blob, entropy []byte) ([]byte, string, error) {
	f.UnprotectCalls++
	f.LastEntropy = entropy
	if f.UnprotectErr != nil {
		return nil, "", &protect.Error{Op: "unprotect", Err: f.UnprotectErr}
	}

	if len(blob) < len(magic)+3 || !bytes.Equal(blob[:len(magic)], magic) {
		return nil, "", &protect.Error{Op: "unprotect", Err: ErrBadData}
	}
	scope := protect.Scope(blob[len(magic)])
	descLen := int(binary.BigEndian.Uint16(blob[len(magic)+1:]))
	rest := blob[len(magic)+3:]
	if len(rest) < descLen {
		return nil, "", &protect.Error{Op: "unprotect", Err: ErrBadData}
	}
	if f.Unavailable[scope] {
		return nil, "", &protect.Error{Op: "unprotect", Err: ErrWrongContext}
	}

	description := string(rest[:descLen])
	body := rest[descLen:]
	return xorBytes(body, f.key(scope, len(body))), description, nil
}

func (f *Fake) key(scope protect.Scope, n int) []byte {
	seed := sha256.Sum256([]byte(fmt.Sprintf("%s/%s", f.Passphrase, scope)))
	key := make([]byte, n)
	for i := range key {
		key[i] = seed[i%len(seed)]
	}
	return key
}

func xorBytes(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i]
	}
	return out
}
