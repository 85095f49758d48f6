package bridge

import (
	"fmt"

	"github.com/vaultsandbox/dpapibridge/internal/protect"
)

// Mode selects the flow a Request runs.
type Mode int

const (
	// ModeUnset is the zero Mode; running it is a usage error.
	ModeUnset Mode = iota
	// ModeEncrypt protects the input and prints the blob as base64.
	ModeEncrypt
	// ModeDecrypt unprotects a base64 blob.
	ModeDecrypt
)

func (m Mode) String() string {
	switch m {
	case ModeUnset:
		return "unset"
	case ModeEncrypt:
		return "encrypt"
	case ModeDecrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Request is one parsed invocation.
type Request struct {
	Mode Mode
	// Base64 means "input is base64" for Encrypt and "emit base64" for Decrypt.
	Base64 bool
	// Input is the inline payload; nil means read standard input.
	Input *string
	// Output is the file Decrypt writes to; empty means standard output.
	Output string
	// Scope selects the protection key for Encrypt. Decrypt ignores it.
	Scope protect.Scope
}
